package s3store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublicBaseURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "aws virtual host",
			cfg:  Config{Bucket: "shop-images", Region: "eu-west-1"},
			want: "https://shop-images.s3.eu-west-1.amazonaws.com",
		},
		{
			name: "custom endpoint is path style",
			cfg:  Config{Bucket: "shop-images", Region: "us-east-1", Endpoint: "http://localhost:9000/"},
			want: "http://localhost:9000/shop-images",
		},
		{
			name: "explicit public url wins",
			cfg:  Config{Bucket: "shop-images", Endpoint: "http://minio:9000", PublicBaseURL: "https://cdn.example.com/"},
			want: "https://cdn.example.com",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, publicBaseURL(tc.cfg))
		})
	}
}

func TestStore_PublicURL(t *testing.T) {
	s := &Store{baseURL: "https://cdn.example.com"}

	assert.Equal(t, "https://cdn.example.com/products/p1-abc.png", s.PublicURL("products/p1-abc.png"))
	assert.Equal(t, "https://cdn.example.com/products/p1-abc.png", s.PublicURL("/products/p1-abc.png"))
}
