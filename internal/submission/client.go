package submission

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/bbernhard/leaf-playground/internal/datastructures"
	"github.com/bbernhard/leaf-playground/internal/upload"
	"github.com/go-resty/resty/v2"
	log "github.com/sirupsen/logrus"
)

const (
	PredictPath = "/predict/"
	FileField   = "file"
)

// Client sends one image to the inference endpoint.
type Client interface {
	Predict(ctx context.Context, file *upload.SelectedFile) (*datastructures.PredictionResult, error)
}

// HTTPClient talks to the inference server over multipart HTTP.
type HTTPClient struct {
	origin string
	rest   *resty.Client
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient creates a client for the server at origin. A zero timeout
// means requests wait until the server answers.
func NewHTTPClient(origin string, timeout time.Duration) *HTTPClient {
	rest := resty.New()
	if timeout > 0 {
		rest.SetTimeout(timeout)
	}

	return &HTTPClient{
		origin: strings.TrimRight(origin, "/"),
		rest:   rest,
	}
}

func (c *HTTPClient) Origin() string {
	return c.origin
}

func (c *HTTPClient) Predict(ctx context.Context, file *upload.SelectedFile) (*datastructures.PredictionResult, error) {
	if file == nil {
		return nil, ErrNoFileSelected
	}

	url := c.origin + PredictPath
	log.Debug("[Client] Posting ", file.Name, " (", file.Size(), " bytes) to ", url)

	resp, err := c.rest.R().
		SetContext(ctx).
		SetMultipartField(FileField, file.Name, file.MediaType, bytes.NewReader(file.Data)).
		Post(url)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	body := resp.Body()
	log.Debug("[Client] Response status: ", resp.StatusCode())

	if !resp.IsSuccess() {
		var errResp datastructures.ErrorResponse
		if err := json.Unmarshal(body, &errResp); err != nil {
			log.Debug("[Client] Error response without JSON detail: ", err.Error())
		}
		return nil, &ServerError{StatusCode: resp.StatusCode(), Detail: errResp.Detail}
	}

	var predictResp datastructures.PredictResponse
	if err := json.Unmarshal(body, &predictResp); err != nil {
		return nil, &MalformedResponseError{StatusCode: resp.StatusCode(), Reason: err.Error()}
	}

	return NewPredictionResult(c.origin, resp.StatusCode(), &predictResp)
}

// NewPredictionResult validates a decoded success body and resolves its
// image reference against origin.
func NewPredictionResult(origin string, statusCode int, resp *datastructures.PredictResponse) (*datastructures.PredictionResult, error) {
	if resp.Prediction == nil {
		return nil, &MalformedResponseError{StatusCode: statusCode, Reason: "missing prediction"}
	}
	if resp.Prediction.AllPredictions == nil {
		return nil, &MalformedResponseError{StatusCode: statusCode, Reason: "missing all_predictions"}
	}
	if resp.ImageUrl == nil {
		return nil, &MalformedResponseError{StatusCode: statusCode, Reason: "missing image_url"}
	}

	return &datastructures.PredictionResult{
		TopLabel:            resp.Prediction.Class,
		Confidence:          resp.Prediction.Confidence,
		PerClassScores:      resp.Prediction.AllPredictions,
		ResultImageLocation: ResolveImageLocation(origin, *resp.ImageUrl),
	}, nil
}

// ResolveImageLocation keeps absolute addresses and prefixes anything else
// with the server origin.
func ResolveImageLocation(origin string, imageURL string) string {
	if strings.HasPrefix(imageURL, "http") {
		return imageURL
	}
	return origin + imageURL
}
