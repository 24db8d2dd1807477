package models

import "time"

// PatientRecord is one risk-assessment submission. Fields mirror the
// patients table; every numeric field has a closed range enforced before
// insert (see internal/validation). Records are immutable once written.
type PatientRecord struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	Age           int       `json:"age"`            // age band 1-13
	BMI           float64   `json:"bmi"`            // 10-100
	HighBP        int       `json:"high_bp"`        // 0/1
	HighChol      int       `json:"high_chol"`      // 0/1
	CholCheck     int       `json:"chol_check"`     // 0/1
	Smoker        int       `json:"smoker"`         // 0/1
	Stroke        int       `json:"stroke"`         // 0/1
	HeartDisease  int       `json:"heart_disease"`  // 0/1
	PhysActivity  int       `json:"phys_activity"`  // 0/1
	Fruits        int       `json:"fruits"`         // 0/1
	Veggies       int       `json:"veggies"`        // 0/1
	HvyAlcohol    int       `json:"hvy_alcohol"`    // 0/1
	AnyHealthcare int       `json:"any_healthcare"` // 0/1
	NoDocCost     int       `json:"no_doc_cost"`    // 0/1
	GenHealth     int       `json:"gen_health"`     // 1-5
	MentHealth    int       `json:"ment_health"`    // 0-30 days
	PhysHealth    int       `json:"phys_health"`    // 0-30 days
	DiffWalk      int       `json:"diff_walk"`      // 0/1
	Sex           int       `json:"sex"`            // 0/1
	Education     int       `json:"education"`      // 1-6
	Income        int       `json:"income"`         // 1-8
	Prediction    int       `json:"prediction"`     // 0/1
	Probability   float64   `json:"probability"`    // 0-1
	Timestamp     time.Time `json:"timestamp"`
}

// FeatureVector returns the record fields in the fixed order the metabolic
// risk model was trained on (Age..Income).
func (r *PatientRecord) FeatureVector() []float64 {
	return []float64{
		float64(r.Age), r.BMI, float64(r.HighBP), float64(r.HighChol),
		float64(r.CholCheck), float64(r.Smoker), float64(r.Stroke),
		float64(r.HeartDisease), float64(r.PhysActivity), float64(r.Fruits),
		float64(r.Veggies), float64(r.HvyAlcohol), float64(r.AnyHealthcare),
		float64(r.NoDocCost), float64(r.GenHealth), float64(r.MentHealth),
		float64(r.PhysHealth), float64(r.DiffWalk), float64(r.Sex),
		float64(r.Education), float64(r.Income),
	}
}

// PatientHistoryResponse is a paginated slice of patient records.
type PatientHistoryResponse struct {
	Records    []PatientRecord `json:"records"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	TotalCount int             `json:"total_count"`
	TotalPages int             `json:"total_pages"`
}
