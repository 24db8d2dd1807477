package models

import "time"

// Prediction is one row of the append-only predictions log.
type Prediction struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	PredictionType string    `json:"prediction_type"` // "Diabetes", "Parkinson's", "Pneumonia"
	Probability    float64   `json:"probability"`     // 0-100
	Outcome        string    `json:"outcome"`
	Timestamp      time.Time `json:"timestamp"`
}

// PredictionResult is the response shape of the inference endpoints.
type PredictionResult struct {
	PredictionType string  `json:"prediction_type"`
	Outcome        string  `json:"outcome"`
	Positive       bool    `json:"positive"`
	Probability    float64 `json:"probability"` // 0-100
	Confidence     float64 `json:"confidence"`  // 0-100, relative to the reported outcome
}

// DiabetesRequest carries the tabular risk factors for the metabolic model.
type DiabetesRequest struct {
	Age           int     `json:"age"`
	BMI           float64 `json:"bmi"`
	HighBP        int     `json:"high_bp"`
	HighChol      int     `json:"high_chol"`
	CholCheck     int     `json:"chol_check"`
	Smoker        int     `json:"smoker"`
	Stroke        int     `json:"stroke"`
	HeartDisease  int     `json:"heart_disease"`
	PhysActivity  int     `json:"phys_activity"`
	Fruits        int     `json:"fruits"`
	Veggies       int     `json:"veggies"`
	HvyAlcohol    int     `json:"hvy_alcohol"`
	AnyHealthcare int     `json:"any_healthcare"`
	NoDocCost     int     `json:"no_doc_cost"`
	GenHealth     int     `json:"gen_health"`
	MentHealth    int     `json:"ment_health"`
	PhysHealth    int     `json:"phys_health"`
	DiffWalk      int     `json:"diff_walk"`
	Sex           int     `json:"sex"`
	Education     int     `json:"education"`
	Income        int     `json:"income"`
}

// ParkinsonsRequest carries the 22 acoustic features extracted from a voice
// recording, in the order the voice model was trained on.
type ParkinsonsRequest struct {
	Features []float64 `json:"features" validate:"required,len=22"`
}

// DashboardResponse summarizes a user's stored predictions and latest
// health metrics.
type DashboardResponse struct {
	TotalPredictions int            `json:"total_predictions"`
	ByType           map[string]int `json:"by_type"`
	LatestBMI        *float64       `json:"latest_bmi,omitempty"`
	LatestGenHealth  *int           `json:"latest_gen_health,omitempty"`
}
