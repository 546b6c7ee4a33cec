package domain

// Student is an enrolled student together with the biometric identifiers bound to them.
// FingerprintID and FaceID are empty when the student has not been enrolled for that method.
type Student struct {
	ID            string
	RegNo         string
	Name          string
	OptionID      string
	FingerprintID string
	FaceID        string
}
