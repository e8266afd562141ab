package resolver

import "testing"

func TestParseS3URL(t *testing.T) {
	tests := []struct {
		in          string
		bucket, key string
		wantErr     bool
	}{
		{in: "s3://media-bucket/renders/clip.mp4", bucket: "media-bucket", key: "renders/clip.mp4"},
		{in: "media-bucket/clip.mp4", bucket: "media-bucket", key: "clip.mp4"},
		{in: "s3://media-bucket", wantErr: true},
		{in: "s3:///clip.mp4", wantErr: true},
	}
	for _, tt := range tests {
		bucket, key, err := ParseS3URL(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseS3URL(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseS3URL(%q): %v", tt.in, err)
			continue
		}
		if bucket != tt.bucket || key != tt.key {
			t.Errorf("ParseS3URL(%q) = (%q, %q), want (%q, %q)", tt.in, bucket, key, tt.bucket, tt.key)
		}
	}
}
