package connectors

// REST clients for the client-directory and asset-catalog services.
// RESTY ONLY

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
	logger "github.com/sirupsen/logrus"
)

// Client is a client record returned by the directory service. Older records
// carry the display name and account under legacy field names, hence the
// fallback accessors.
type Client struct {
	ID            string `json:"id"`
	Name          string `json:"name,omitempty"`
	Denominacion  string `json:"denominacion,omitempty"`
	Titular       string `json:"titular,omitempty"`
	AccountNumber string `json:"accountNumber,omitempty"`
	IDCliente     string `json:"idCliente,omitempty"`
}

// DisplayName resolves the client's display name across the legacy field
// variants, falling back to a synthetic "Cliente <id>" label.
func (c *Client) DisplayName() string {
	switch {
	case c.Name != "":
		return c.Name
	case c.Denominacion != "":
		return c.Denominacion
	case c.Titular != "":
		return c.Titular
	default:
		return fmt.Sprintf("Cliente %s", c.ID)
	}
}

// Account resolves the client's account number across the legacy field variants.
func (c *Client) Account() string {
	if c.AccountNumber != "" {
		return c.AccountNumber
	}
	return c.IDCliente
}

// Asset is an asset record returned by the catalog service. Ticker is the
// only field the order flow requires.
type Asset struct {
	ID     string `json:"id"`
	Ticker string `json:"ticker"`
	Name   string `json:"name,omitempty"`
}

// LookupConnector performs client and asset lookups against the external
// directory services.
type LookupConnector struct {
	clients *resty.Client
	assets  *resty.Client
}

// NewLookupConnector builds a connector from environment configuration.
func NewLookupConnector() *LookupConnector {
	config := GetConfig()
	return NewLookupConnectorWithURLs(config.ClientsBaseURL, config.AssetsBaseURL)
}

// NewLookupConnectorWithURLs builds a connector against explicit base URLs.
// Useful for tests.
func NewLookupConnectorWithURLs(clientsBaseURL, assetsBaseURL string) *LookupConnector {
	config := GetConfig()

	return &LookupConnector{
		clients: resty.New().
			SetBaseURL(clientsBaseURL).
			SetTimeout(config.HTTPTimeout),
		assets: resty.New().
			SetBaseURL(assetsBaseURL).
			SetTimeout(config.HTTPTimeout),
	}
}

// GetClientByID fetches a client record by identifier.
// Returns (nil, nil) when the directory reports 404.
func (l *LookupConnector) GetClientByID(ctx context.Context, id string) (*Client, error) {

	logger.WithFields(map[string]interface{}{
		"connector": "LookupConnector",
		"op":        "GetClientByID",
		"id":        id,
	}).Debug("Fetching client")

	var client Client

	resp, err := l.clients.R().
		SetContext(ctx).
		SetResult(&client).
		Get(fmt.Sprintf("/clients/%s", id))

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"connector": "LookupConnector",
			"op":        "GetClientByID",
			"id":        id,
		}).WithError(err).Error("Client lookup request failed")

		return nil, err
	}

	if resp.StatusCode() == http.StatusNotFound {
		return nil, nil
	}

	if resp.IsError() {
		return nil, fmt.Errorf("client lookup returned status %d", resp.StatusCode())
	}

	return &client, nil
}

// GetAssetByID fetches an asset record by identifier.
// Returns (nil, nil) when the catalog reports 404.
func (l *LookupConnector) GetAssetByID(ctx context.Context, id string) (*Asset, error) {

	logger.WithFields(map[string]interface{}{
		"connector": "LookupConnector",
		"op":        "GetAssetByID",
		"id":        id,
	}).Debug("Fetching asset")

	var asset Asset

	resp, err := l.assets.R().
		SetContext(ctx).
		SetResult(&asset).
		Get(fmt.Sprintf("/assets/%s", id))

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"connector": "LookupConnector",
			"op":        "GetAssetByID",
			"id":        id,
		}).WithError(err).Error("Asset lookup request failed")

		return nil, err
	}

	if resp.StatusCode() == http.StatusNotFound {
		return nil, nil
	}

	if resp.IsError() {
		return nil, fmt.Errorf("asset lookup returned status %d", resp.StatusCode())
	}

	return &asset, nil
}
