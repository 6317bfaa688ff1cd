// Package resume holds the editable document model and its update rules.
package resume

import (
	"time"

	"github.com/google/uuid"

	"cvstudio/api/internal/store"
)

const (
	DefaultTemplateID = "t1"
	TypeCV            = "cv"
	TypeCoverLetter   = "cover-letter"
)

// New builds a fresh document with placeholder content so the preview is
// never blank. The caller persists it immediately, not through the debounce.
func New(ownerID, title, templateID string, now time.Time) store.Resume {
	if templateID == "" {
		templateID = DefaultTemplateID
	}
	if title == "" {
		title = "Untitled CV"
	}
	return store.Resume{
		ID:         uuid.NewString(),
		OwnerID:    ownerID,
		Title:      title,
		TemplateID: templateID,
		UpdatedAt:  now,
		Content: store.ResumeContent{
			PersonalInfo: store.PersonalInfo{
				FullName:  "Your Name",
				Email:     "you@example.com",
				Phone:     "",
				Objective: "A short statement about your goals.",
			},
			Experience: []store.Experience{},
			Education:  []store.Education{},
			Skills:     []string{},
			Type:       TypeCV,
		},
	}
}

// Patch carries a shallow update. Nil fields are left untouched; set fields
// replace the whole region. Identity fields are absent on purpose: a patch
// can never move a document to another id or owner.
type Patch struct {
	Title        *string              `json:"title,omitempty"`
	TemplateID   *string              `json:"templateId,omitempty"`
	PersonalInfo *store.PersonalInfo  `json:"personalInfo,omitempty"`
	Experience   *[]store.Experience  `json:"experience,omitempty"`
	Education    *[]store.Education   `json:"education,omitempty"`
	Skills       *[]string            `json:"skills,omitempty"`
	Type         *string              `json:"type,omitempty"`
}

// ApplyUpdate merges a patch into the document and stamps UpdatedAt. The
// stamp never moves backwards even if the supplied clock does.
func ApplyUpdate(r *store.Resume, p Patch, now time.Time) {
	if p.Title != nil {
		r.Title = *p.Title
	}
	if p.TemplateID != nil {
		r.TemplateID = *p.TemplateID
	}
	if p.PersonalInfo != nil {
		r.Content.PersonalInfo = *p.PersonalInfo
	}
	if p.Experience != nil {
		r.Content.Experience = *p.Experience
	}
	if p.Education != nil {
		r.Content.Education = *p.Education
	}
	if p.Skills != nil {
		r.Content.Skills = *p.Skills
	}
	if p.Type != nil {
		r.Content.Type = *p.Type
	}
	if now.After(r.UpdatedAt) {
		r.UpdatedAt = now
	} else {
		r.UpdatedAt = r.UpdatedAt.Add(time.Millisecond)
	}
}

// AddExperience appends an entry, minting an id when the caller left it blank.
func AddExperience(c *store.ResumeContent, e store.Experience) store.Experience {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	c.Experience = append(c.Experience, e)
	return e
}

// RemoveExperience drops the entry with the given id. Remaining entries keep
// their ids and order.
func RemoveExperience(c *store.ResumeContent, id string) bool {
	for i, e := range c.Experience {
		if e.ID == id {
			c.Experience = append(c.Experience[:i], c.Experience[i+1:]...)
			return true
		}
	}
	return false
}

func AddEducation(c *store.ResumeContent, e store.Education) store.Education {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	c.Education = append(c.Education, e)
	return e
}

func RemoveEducation(c *store.ResumeContent, id string) bool {
	for i, e := range c.Education {
		if e.ID == id {
			c.Education = append(c.Education[:i], c.Education[i+1:]...)
			return true
		}
	}
	return false
}
