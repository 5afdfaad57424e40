package embedding

import (
	"context"
	"fmt"

	aiplatform "cloud.google.com/go/aiplatform/apiv1"
	"cloud.google.com/go/aiplatform/apiv1/aiplatformpb"
	"google.golang.org/api/option"
	"google.golang.org/protobuf/types/known/structpb"
)

// VertexProvider generates embeddings with Google's text-embedding-005
// model via the Vertex AI prediction API.
type VertexProvider struct {
	client    *aiplatform.PredictionClient
	modelName string
}

// NewVertexProvider dials Vertex AI using the given service-account
// credentials file (application default credentials when empty).
func NewVertexProvider(ctx context.Context, projectID, location, credentialsFile string) (*VertexProvider, error) {
	if projectID == "" {
		return nil, fmt.Errorf("gcp project id is required")
	}
	if location == "" {
		location = "us-central1"
	}

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := aiplatform.NewPredictionClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vertex AI client: %w", err)
	}

	return &VertexProvider{
		client:    client,
		modelName: fmt.Sprintf("projects/%s/locations/%s/publishers/google/models/text-embedding-005", projectID, location),
	}, nil
}

// Embed requests an embedding with task_type = "RETRIEVAL_QUERY" so query
// vectors align with the stored document vectors.
func (v *VertexProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	instance, err := structpb.NewStruct(map[string]interface{}{
		"content":   text,
		"task_type": "RETRIEVAL_QUERY",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create instance: %w", err)
	}

	resp, err := v.client.Predict(ctx, &aiplatformpb.PredictRequest{
		Endpoint:  v.modelName,
		Instances: []*structpb.Value{structpb.NewStructValue(instance)},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get prediction: %w", err)
	}
	if len(resp.Predictions) == 0 {
		return nil, fmt.Errorf("no predictions returned")
	}

	prediction := resp.Predictions[0].GetStructValue()
	embeddings := prediction.GetFields()["embeddings"].GetStructValue()
	values := embeddings.GetFields()["values"].GetListValue().GetValues()

	result := make([]float32, len(values))
	for i, val := range values {
		result[i] = float32(val.GetNumberValue())
	}
	return result, nil
}

// Close releases the underlying gRPC client.
func (v *VertexProvider) Close() error {
	return v.client.Close()
}
