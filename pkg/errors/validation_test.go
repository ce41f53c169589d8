package errors

import "testing"

func TestValidatePermutations(t *testing.T) {
	tests := []struct {
		name    string
		n       int
		wantErr bool
	}{
		{name: "minimum", n: 1, wantErr: false},
		{name: "default", n: 1000, wantErr: false},
		{name: "max", n: MaxPermutations, wantErr: false},
		{name: "zero", n: 0, wantErr: true},
		{name: "negative", n: -5, wantErr: true},
		{name: "too large", n: MaxPermutations + 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePermutations(tt.n)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePermutations(%d) error = %v, wantErr %v", tt.n, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidConfig) {
				t.Errorf("error code = %v, want %v", GetCode(err), ErrCodeInvalidConfig)
			}
		})
	}
}

func TestValidateAlpha(t *testing.T) {
	tests := []struct {
		name    string
		alpha   float64
		wantErr bool
	}{
		{name: "default", alpha: 0.05, wantErr: false},
		{name: "near zero", alpha: 0.0001, wantErr: false},
		{name: "near one", alpha: 0.999, wantErr: false},
		{name: "zero", alpha: 0, wantErr: true},
		{name: "one", alpha: 1, wantErr: true},
		{name: "negative", alpha: -0.05, wantErr: true},
		{name: "above one", alpha: 1.5, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAlpha(tt.alpha)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAlpha(%g) error = %v, wantErr %v", tt.alpha, err, tt.wantErr)
			}
		})
	}
}

func TestValidateRadius(t *testing.T) {
	tests := []struct {
		name    string
		radius  int
		wantErr bool
	}{
		{name: "zero is self-only", radius: 0, wantErr: false},
		{name: "default", radius: 1, wantErr: false},
		{name: "max", radius: MaxRadius, wantErr: false},
		{name: "negative", radius: -1, wantErr: true},
		{name: "too large", radius: MaxRadius + 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRadius(tt.radius)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRadius(%d) error = %v, wantErr %v", tt.radius, err, tt.wantErr)
			}
		})
	}
}

func TestValidateTargetDims(t *testing.T) {
	if err := ValidateTargetDims(2); err != nil {
		t.Errorf("ValidateTargetDims(2) error = %v, want nil", err)
	}
	if err := ValidateTargetDims(0); err == nil {
		t.Error("ValidateTargetDims(0) error = nil, want INVALID_CONFIG")
	}
}
