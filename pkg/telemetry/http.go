// pkg/telemetry/http.go
// Copyright(c) 2025 tankersim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package telemetry

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tankerops/tankersim/pkg/sim"
)

const DefaultTokenLifetime = time.Hour

// HTTPSink POSTs each record as JSON to an ingestion endpoint. If a
// device key is given, requests are authorized with a shared access
// signature token for the device.
type HTTPSink struct {
	URL        string
	DeviceName string
	// DeviceKey is the base64-encoded symmetric key for the device.
	DeviceKey     string
	TokenLifetime time.Duration
	Client        *http.Client
	// Headers are added to every request.
	Headers map[string]string

	now func() time.Time
}

func NewHTTPSink(endpoint, deviceName, deviceKey string) *HTTPSink {
	return &HTTPSink{
		URL:           endpoint,
		DeviceName:    deviceName,
		DeviceKey:     deviceKey,
		TokenLifetime: DefaultTokenLifetime,
		Client:        &http.Client{Timeout: 30 * time.Second},
		now:           time.Now,
	}
}

func (s *HTTPSink) Name() string { return "http" }

func (s *HTTPSink) Send(ctx context.Context, r sim.Record) error {
	body, err := json.Marshal(r)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	for k, v := range s.Headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("Content-Type", "application/json")

	if s.DeviceKey != "" {
		resource, err := s.resource()
		if err != nil {
			return err
		}
		now := time.Now
		if s.now != nil {
			now = s.now
		}
		lifetime := s.TokenLifetime
		if lifetime <= 0 {
			lifetime = DefaultTokenLifetime
		}
		tok, err := SASToken(resource, s.DeviceKey, now().Add(lifetime))
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", tok)
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s: %s: %s", s.URL, resp.Status, bytes.TrimSpace(msg))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// resource returns the resource URI that the token is scoped to:
// <host>/devices/<device>.
func (s *HTTPSink) resource() (string, error) {
	u, err := url.Parse(s.URL)
	if err != nil {
		return "", err
	}
	if s.DeviceName == "" {
		return u.Host, nil
	}
	return u.Host + "/devices/" + url.PathEscape(s.DeviceName), nil
}

// SASToken returns a shared access signature for resource that expires at
// the given time. key is base64-encoded.
func SASToken(resource, key string, expiry time.Time) (string, error) {
	k, err := base64.StdEncoding.DecodeString(key)
	if err != nil {
		return "", fmt.Errorf("device key: %w", err)
	}

	sr := url.QueryEscape(resource)
	se := strconv.FormatInt(expiry.Unix(), 10)

	mac := hmac.New(sha256.New, k)
	mac.Write([]byte(sr + "\n" + se))
	sig := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return "SharedAccessSignature sr=" + sr + "&sig=" + url.QueryEscape(sig) + "&se=" + se, nil
}
