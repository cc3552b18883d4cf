package clinical

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	GROUP_ASD                  = "asd"
	GROUP_TYPICALLY_DEVELOPING = "typically_developing"
)

type Clinician struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name           string             `bson:"name" json:"name"`
	Hospital       string             `bson:"hospital" json:"hospital"`
	CredentialHash string             `bson:"credentialHash" json:"-"`
	CreatedAt      int64              `bson:"createdAt" json:"createdAt"`
	UpdatedAt      int64              `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

type Child struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name        string             `bson:"name" json:"name"`
	DateOfBirth int64              `bson:"dateOfBirth" json:"dateOfBirth"` // epoch millis
	Age         float64            `bson:"age,omitempty" json:"age,omitempty"`
	AgeMonths   *int               `bson:"ageMonths,omitempty" json:"ageMonths,omitempty"`
	Gender      string             `bson:"gender" json:"gender"`
	Language    string             `bson:"language" json:"language"`
	Group       string             `bson:"group" json:"group"`
	ASDLevel    string             `bson:"asdLevel,omitempty" json:"asdLevel,omitempty"`
	ClinicianID string             `bson:"clinicianID,omitempty" json:"clinicianID,omitempty"`
	ChildCode   string             `bson:"childCode,omitempty" json:"childCode,omitempty"`
	CreatedAt   int64              `bson:"createdAt" json:"createdAt"`
	UpdatedAt   int64              `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

type Session struct {
	ID                   primitive.ObjectID     `bson:"_id,omitempty" json:"id,omitempty"`
	ChildID              string                 `bson:"childID" json:"childID"`
	SessionType          string                 `bson:"sessionType" json:"sessionType"`
	StartTime            int64                  `bson:"startTime" json:"startTime"` // epoch millis
	EndTime              int64                  `bson:"endTime,omitempty" json:"endTime,omitempty"`
	GameResults          map[string]interface{} `bson:"gameResults,omitempty" json:"gameResults,omitempty"`
	QuestionnaireResults map[string]interface{} `bson:"questionnaireResults,omitempty" json:"questionnaireResults,omitempty"`
	ReflectionResults    map[string]interface{} `bson:"reflectionResults,omitempty" json:"reflectionResults,omitempty"`
	RiskScore            *float64               `bson:"riskScore,omitempty" json:"riskScore,omitempty"`
	RiskLevel            string                 `bson:"riskLevel,omitempty" json:"riskLevel,omitempty"`
	CreatedAt            int64                  `bson:"createdAt" json:"createdAt"`
	UpdatedAt            int64                  `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

type Trial struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	SessionID      string             `bson:"sessionID" json:"sessionID"`
	TrialNumber    int                `bson:"trialNumber" json:"trialNumber"`
	Stimulus       string             `bson:"stimulus,omitempty" json:"stimulus,omitempty"`
	Rule           string             `bson:"rule,omitempty" json:"rule,omitempty"`
	Response       string             `bson:"response,omitempty" json:"response,omitempty"`
	Correct        bool               `bson:"correct" json:"correct"`
	ReactionTimeMS float64            `bson:"reactionTimeMs" json:"reactionTimeMs"`
	Timestamp      int64              `bson:"timestamp" json:"timestamp"` // epoch millis
}
