package store

import "time"

type Profile struct {
	ID           string
	Username     string
	FullName     string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// Resume is the persisted row shape: flat columns plus a JSONB content blob
// holding the editable regions.
type Resume struct {
	ID         string
	OwnerID    string
	Title      string
	TemplateID string
	UpdatedAt  time.Time
	Content    ResumeContent
}

// ResumeContent is the persisted subset of an editable resume. Transient
// editor state never reaches this struct.
type ResumeContent struct {
	PersonalInfo PersonalInfo `json:"personalInfo"`
	Experience   []Experience `json:"experience"`
	Education    []Education  `json:"education"`
	Skills       []string     `json:"skills"`
	Type         string       `json:"type"`
}

type PersonalInfo struct {
	FullName  string `json:"fullName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	DOB       string `json:"dob"`
	Gender    string `json:"gender"`
	Address   string `json:"address"`
	Avatar    string `json:"avatar,omitempty"`
	Objective string `json:"objective"`
}

type Experience struct {
	ID          string `json:"id"`
	Company     string `json:"company"`
	Position    string `json:"position"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Description string `json:"description"`
}

type Education struct {
	ID     string `json:"id"`
	School string `json:"school"`
	Major  string `json:"major"`
	Year   string `json:"year"`
}

type Template struct {
	ID        string
	Name      string
	Category  string
	Thumbnail string
}
