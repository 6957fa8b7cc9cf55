// Package translate is a thin client for the machine translation
// collaborator (the Azure Translator text API).
package translate

import (
	"context"
	"errors"

	"github.com/carlmjohnson/requests"
)

// NotConfigured is returned as the translated text when no API key is
// set, so a misconfigured deployment degrades to a visible message
// instead of an opaque failure.
const NotConfigured = "Error: the translation service is not configured."

// Client calls the translation service.
type Client struct {
	endpoint string
	key      string
	region   string
}

// New returns a client for the service at endpoint. An empty key
// disables the client.
func New(endpoint, key, region string) *Client {
	if endpoint == "" {
		endpoint = "https://api.cognitive.microsofttranslator.com/translate"
	}
	return &Client{endpoint: endpoint, key: key, region: region}
}

type translation struct {
	Translations []struct {
		Text string `json:"text"`
		To   string `json:"to"`
	} `json:"translations"`
}

// Translate renders text from the source language into dest. When the
// client is not configured it returns NotConfigured rather than an
// error, matching the behaviour callers render to the user.
func (c *Client) Translate(ctx context.Context, text, source, dest string) (string, error) {
	if c.key == "" {
		return NotConfigured, nil
	}
	var resp []translation
	err := requests.URL(c.endpoint).
		Param("api-version", "3.0").
		Param("from", source).
		Param("to", dest).
		Header("Ocp-Apim-Subscription-Key", c.key).
		Header("Ocp-Apim-Subscription-Region", c.region).
		BodyJSON([]map[string]string{{"Text": text}}).
		ToJSON(&resp).
		Fetch(ctx)
	if err != nil {
		return "", err
	}
	if len(resp) == 0 || len(resp[0].Translations) == 0 {
		return "", errors.New("translate: empty response")
	}
	return resp[0].Translations[0].Text, nil
}
