// Package shipping proxies the external shipping-rate API. The order core
// never depends on it; the storefront uses it to quote delivery costs before
// an order is placed.
package shipping

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Province and City are the location codes the rate API keys on
type Province struct {
	ProvinceID string `json:"province_id"`
	Province   string `json:"province"`
}

type City struct {
	CityID     string `json:"city_id"`
	ProvinceID string `json:"province_id"`
	CityName   string `json:"city_name"`
	PostalCode string `json:"postal_code"`
}

// RateOption is one courier service quote
type RateOption struct {
	Service       string `json:"service"`
	Description   string `json:"description"`
	Cost          int64  `json:"cost"`
	EstimatedDays string `json:"etd"`
}

// Client answers province/city lookups and shipping-cost quotes
type Client interface {
	Provinces(ctx context.Context) ([]Province, error)
	Cities(ctx context.Context, provinceID string) ([]City, error)
	Cost(ctx context.Context, origin, destination string, weightGrams int, courier string) ([]RateOption, error)
}

// RajaOngkirClient implements Client against the RajaOngkir starter API
type RajaOngkirClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewRajaOngkirClient(baseURL, apiKey string) *RajaOngkirClient {
	if baseURL == "" {
		baseURL = "https://api.rajaongkir.com/starter"
	}
	return &RajaOngkirClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *RajaOngkirClient) Provinces(ctx context.Context) ([]Province, error) {
	var result struct {
		RajaOngkir struct {
			Results []Province `json:"results"`
		} `json:"rajaongkir"`
	}
	if err := c.get(ctx, "/province", nil, &result); err != nil {
		return nil, err
	}
	return result.RajaOngkir.Results, nil
}

func (c *RajaOngkirClient) Cities(ctx context.Context, provinceID string) ([]City, error) {
	params := url.Values{}
	if provinceID != "" {
		params.Set("province", provinceID)
	}
	var result struct {
		RajaOngkir struct {
			Results []City `json:"results"`
		} `json:"rajaongkir"`
	}
	if err := c.get(ctx, "/city", params, &result); err != nil {
		return nil, err
	}
	return result.RajaOngkir.Results, nil
}

func (c *RajaOngkirClient) Cost(ctx context.Context, origin, destination string, weightGrams int, courier string) ([]RateOption, error) {
	if courier == "" {
		courier = "jne"
	}

	form := url.Values{}
	form.Set("origin", origin)
	form.Set("destination", destination)
	form.Set("weight", strconv.Itoa(weightGrams))
	form.Set("courier", courier)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/cost", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("key", c.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("shipping cost request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("shipping cost request failed with status %d: %s", resp.StatusCode, msg)
	}

	var result struct {
		RajaOngkir struct {
			Results []struct {
				Costs []struct {
					Service     string `json:"service"`
					Description string `json:"description"`
					Cost        []struct {
						Value int64  `json:"value"`
						ETD   string `json:"etd"`
					} `json:"cost"`
				} `json:"costs"`
			} `json:"results"`
		} `json:"rajaongkir"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode shipping cost response: %w", err)
	}

	var options []RateOption
	for _, res := range result.RajaOngkir.Results {
		for _, cost := range res.Costs {
			option := RateOption{Service: cost.Service, Description: cost.Description}
			if len(cost.Cost) > 0 {
				option.Cost = cost.Cost[0].Value
				option.EstimatedDays = cost.Cost[0].ETD
			}
			options = append(options, option)
		}
	}
	return options, nil
}

func (c *RajaOngkirClient) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("shipping rate request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("shipping rate request failed with status %d: %s", resp.StatusCode, msg)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode shipping rate response: %w", err)
	}
	return nil
}
