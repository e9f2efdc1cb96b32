package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"hrcms/internal/config"
)

func TestPublicBaseURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.MinIO
		want string
	}{
		{
			name: "endpoint without ssl",
			cfg:  config.MinIO{Endpoint: "localhost:9000", BucketName: "blog-images"},
			want: "http://localhost:9000/blog-images",
		},
		{
			name: "endpoint with ssl",
			cfg:  config.MinIO{Endpoint: "s3.example.com", BucketName: "blog", UseSSL: true},
			want: "https://s3.example.com/blog",
		},
		{
			name: "public url wins",
			cfg:  config.MinIO{Endpoint: "minio:9000", BucketName: "blog", PublicURL: "https://cdn.example.com/blog/"},
			want: "https://cdn.example.com/blog",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, publicBaseURL(tt.cfg))
		})
	}
}

func TestObjectURL(t *testing.T) {
	assert.Equal(t,
		"https://cdn.example.com/blog/2024/05/a%20b.png",
		objectURL("https://cdn.example.com", "blog/2024/05/a b.png"))
}
