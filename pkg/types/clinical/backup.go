package clinical

// BATCH_WRITE_LIMIT is the maximum number of write operations the store
// accepts inside one atomic batched commit.
const BATCH_WRITE_LIMIT = 500

// collection names of the clinical record store
const (
	COLLECTION_CHILDREN   = "children"
	COLLECTION_SESSIONS   = "sessions"
	COLLECTION_TRIALS     = "trials"
	COLLECTION_CLINICIANS = "clinicians"
)

var AllCollections = []string{
	COLLECTION_CHILDREN,
	COLLECTION_SESSIONS,
	COLLECTION_TRIALS,
	COLLECTION_CLINICIANS,
}

func IsKnownCollection(name string) bool {
	for _, c := range AllCollections {
		if c == name {
			return true
		}
	}
	return false
}

type BackupMetadata struct {
	BackupID  string `json:"backupID"`
	Timestamp int64  `json:"timestamp"` // epoch millis
	Version   string `json:"version"`
}

type BackupData struct {
	Children   []Child     `json:"children"`
	Sessions   []Session   `json:"sessions"`
	Trials     []Trial     `json:"trials"`
	Clinicians []Clinician `json:"clinicians"`
}

type BackupStats struct {
	Children   int `json:"children"`
	Sessions   int `json:"sessions"`
	Trials     int `json:"trials"`
	Clinicians int `json:"clinicians"`
}

// Backup is the snapshot artifact persisted as one blob per backup. It is
// immutable once written; a restore only reads it.
type Backup struct {
	Metadata BackupMetadata `json:"metadata"`
	Data     BackupData     `json:"data"`
	Stats    BackupStats    `json:"stats"`
}

// StatsMatchData reports whether the recorded stats equal the cardinality of
// the data arrays.
func (b Backup) StatsMatchData() bool {
	return b.Stats.Children == len(b.Data.Children) &&
		b.Stats.Sessions == len(b.Data.Sessions) &&
		b.Stats.Trials == len(b.Data.Trials) &&
		b.Stats.Clinicians == len(b.Data.Clinicians)
}

func (b BackupData) StatsFromData() BackupStats {
	return BackupStats{
		Children:   len(b.Children),
		Sessions:   len(b.Sessions),
		Trials:     len(b.Trials),
		Clinicians: len(b.Clinicians),
	}
}
