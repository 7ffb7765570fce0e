package storage

import "testing"

func TestObjectURL(t *testing.T) {
	tests := []struct {
		name   string
		bucket string
		region string
		key    string
		want   string
	}{
		{
			name:   "cover image",
			bucket: "jread-media",
			region: "us-east-1",
			key:    "cover_images/user-1/abc.jpg",
			want:   "https://jread-media.s3.us-east-1.amazonaws.com/cover_images/user-1/abc.jpg",
		},
		{
			name:   "profile picture",
			bucket: "jread-media",
			region: "eu-west-2",
			key:    "profile_pictures/user-2/def.png",
			want:   "https://jread-media.s3.eu-west-2.amazonaws.com/profile_pictures/user-2/def.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &S3Store{bucket: tt.bucket, region: tt.region}
			if got := s.ObjectURL(tt.key); got != tt.want {
				t.Errorf("ObjectURL() = %q, want %q", got, tt.want)
			}
		})
	}
}
