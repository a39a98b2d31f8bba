package datastructures

// Prediction is the classification block of a /predict/ response.
type Prediction struct {
	Class          string             `json:"class"`
	Confidence     float64            `json:"confidence"`
	AllPredictions map[string]float64 `json:"all_predictions"`
}

// PredictResponse is the body the inference endpoint returns on success.
type PredictResponse struct {
	Status     string      `json:"status,omitempty"`
	Prediction *Prediction `json:"prediction"`
	ImageUrl   *string     `json:"image_url"`
}

type ErrorResponse struct {
	Detail string `json:"detail"`
}

// PredictionResult is what a successful submission renders.
type PredictionResult struct {
	TopLabel            string             `json:"top_label"`
	Confidence          float64            `json:"confidence"`
	PerClassScores      map[string]float64 `json:"per_class_scores"`
	ResultImageLocation string             `json:"result_image_location"`
}

type ClassScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}
