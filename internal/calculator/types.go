package calculator

// CalculateRequest is the JSON body for POST /calculate/. Elements are
// pointers so that a JSON null is rejected instead of decoding as 0.
type CalculateRequest struct {
	Numbers []*float64 `json:"numbers" validate:"required,min=1,dive,required"`
	Delays  []*float64 `json:"delays" validate:"required,min=1,dive,required,gte=0"` // seconds
}

// values dereferences validated request elements.
func values(in []*float64) []float64 {
	out := make([]float64, len(in))
	for i, p := range in {
		out[i] = *p
	}
	return out
}

// ResultItem is one unit's result. Time is the measured wall-clock seconds of
// the unit, rounded to two decimals.
type ResultItem struct {
	Number float64 `json:"number"`
	Square float64 `json:"square"`
	Delay  float64 `json:"delay"`
	Time   float64 `json:"time"`
}

// CalculateResponse is the JSON response for POST /calculate/.
type CalculateResponse struct {
	Results                      []ResultItem `json:"results"`
	TotalTime                    float64      `json:"total_time"`
	ParallelFasterThanSequential bool         `json:"parallel_faster_than_sequential"`
}
