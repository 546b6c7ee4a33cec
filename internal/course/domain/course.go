package domain

// Course is a taught course. LecturerID and OptionID are empty when unassigned.
type Course struct {
	ID           string
	Code         string
	Name         string
	DepartmentID string
	LecturerID   string
	// OptionID is the cohort (program option) whose students are expected to attend.
	OptionID string
}

// Lecturer is a teaching staff member who runs attendance sessions.
type Lecturer struct {
	ID           string
	Name         string
	DepartmentID string
}
