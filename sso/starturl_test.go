package sso_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/screenerhq/scan-server/internal/errors"
	"github.com/screenerhq/scan-server/sso"
)

func TestNormalizeStartURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"https://acme.awsapps.com/start", "https://acme.awsapps.com/start"},
		{"https://acme.awsapps.com/start/", "https://acme.awsapps.com/start"},
		{"https://acme.awsapps.com", "https://acme.awsapps.com/start"},
		{"https://acme.awsapps.com/start#/", "https://acme.awsapps.com/start"},
		{"  https://acme.awsapps.com/start  ", "https://acme.awsapps.com/start"},
	}

	for _, tc := range cases {
		got, err := sso.NormalizeStartURL(tc.in)
		require.NoError(t, err, "in=%q", tc.in)
		assert.Equal(t, tc.want, got, "in=%q", tc.in)
	}
}

func TestNormalizeStartURLRejectsMalformed(t *testing.T) {
	for _, in := range []string{"", "   ", "acme.awsapps.com/start", "ftp://acme.awsapps.com/start", "https://"} {
		_, err := sso.NormalizeStartURL(in)
		require.ErrorIs(t, err, errors.ErrInvalidStartURL, "in=%q", in)
	}
}

func TestDetectRegion(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"https://acme.awsapps.com/start", "us-east-1"},
		{"https://acme.eu-west-1.awsapps.com/start", "eu-west-1"},
		{"https://acme.ap-southeast-1.awsapps.com/start", "ap-southeast-1"},
		{"https://sso.example.com/start", "us-east-1"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, sso.DetectRegion(tc.in), "in=%q", tc.in)
	}
}
