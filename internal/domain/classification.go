package domain

// Label is the classification verdict for a detected signal.
type Label string

// Classification labels.
const (
	LabelConfirmed     Label = "Confirmed"
	LabelCandidate     Label = "Candidate"
	LabelFalsePositive Label = "FalsePositive"
)

// Valid reports whether l is one of the known labels.
func (l Label) Valid() bool {
	switch l {
	case LabelConfirmed, LabelCandidate, LabelFalsePositive:
		return true
	}
	return false
}

// Classification is the verdict for one detected signal.
type Classification struct {
	Label       Label   `json:"label"`
	Probability float64 `json:"probability"` // [0,1]
	Reasoning   string  `json:"reasoning"`
}

// Dataset tags accepted by the classification service.
const (
	DatasetKepler  = "kepler"
	DatasetK2      = "k2"
	DatasetTESS    = "tess"
	DatasetUnknown = "unknown"
)
