package lionparcel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var (
	ErrConfigInvalid   = errors.New("lionparcel config invalid")
	ErrRequestFailed   = errors.New("lionparcel request failed")
	ErrResponseInvalid = errors.New("lionparcel response invalid")
)

// 妥投状态编码（承运商回调）
const (
	StatusPOD = "POD" // Proof of Delivery，妥投
)

// Config 承运商客户端配置
type Config struct {
	BaseURL        string `json:"base_url" mapstructure:"base_url"`               // 网关地址
	AuthToken      string `json:"auth_token" mapstructure:"auth_token"`           // Basic 认证令牌
	Origin         string `json:"origin" mapstructure:"origin"`                   // 发货地线路编码
	Commodity      string `json:"commodity" mapstructure:"commodity"`             // 货物品类编码
	TimeoutSeconds int    `json:"timeout_seconds" mapstructure:"timeout_seconds"` // 请求超时（秒）
}

func (c *Config) normalize() {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	c.AuthToken = strings.TrimSpace(c.AuthToken)
	c.Origin = strings.TrimSpace(c.Origin)
	c.Commodity = strings.TrimSpace(c.Commodity)
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 10
	}
}

// ValidateConfig 校验配置
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config is nil", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return fmt.Errorf("%w: base_url is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.AuthToken) == "" {
		return fmt.Errorf("%w: auth_token is required", ErrConfigInvalid)
	}
	return nil
}

// Client 承运商 API 客户端
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient 创建客户端
func NewClient(cfg Config) (*Client, error) {
	cfg.normalize()
	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
	}, nil
}

// Origin 发货地线路编码
func (c *Client) Origin() string {
	return c.cfg.Origin
}

// Commodity 货物品类编码
func (c *Client) Commodity() string {
	return c.cfg.Commodity
}

// TariffRequest 运价查询请求
type TariffRequest struct {
	Origin      string
	Destination string
	WeightKG    int
	Commodity   string
}

// TariffEntry 单个运输产品报价
type TariffEntry struct {
	ProductCode  string `json:"product"`
	TotalTariff  int64  `json:"total_tariff"`
	IsEmbargo    bool   `json:"is_embargo"`
	EstimatedSLA string `json:"estimated_sla"`
}

// TariffResult 运价查询结果
type TariffResult struct {
	WeightKG    int           `json:"weight"`
	Destination string        `json:"destination"`
	Entries     []TariffEntry `json:"result"`
}

// GetTariff 查询运价列表
func (c *Client) GetTariff(ctx context.Context, req TariffRequest) (*TariffResult, error) {
	if strings.TrimSpace(req.Destination) == "" || req.WeightKG <= 0 {
		return nil, fmt.Errorf("%w: destination and weight are required", ErrConfigInvalid)
	}
	origin := strings.TrimSpace(req.Origin)
	if origin == "" {
		origin = c.cfg.Origin
	}
	commodity := strings.TrimSpace(req.Commodity)
	if commodity == "" {
		commodity = c.cfg.Commodity
	}

	query := url.Values{}
	query.Set("origin", origin)
	query.Set("destination", req.Destination)
	query.Set("weight", strconv.Itoa(req.WeightKG))
	query.Set("commodity_id", commodity)

	body, err := c.doRequest(ctx, http.MethodGet, "/v3/tariffv3?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data struct {
			Weight      int           `json:"weight"`
			Destination string        `json:"destination"`
			Result      []TariffEntry `json:"result"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	if len(resp.Data.Result) == 0 {
		return nil, fmt.Errorf("%w: empty tariff result", ErrResponseInvalid)
	}

	return &TariffResult{
		WeightKG:    resp.Data.Weight,
		Destination: resp.Data.Destination,
		Entries:     resp.Data.Result,
	}, nil
}

// BookingPiece 托寄物单件明细
type BookingPiece struct {
	Quantity   int `json:"stt_piece_per_pack"`
	WeightGram int `json:"stt_piece_gross_weight"`
	LengthCM   int `json:"stt_piece_length"`
	WidthCM    int `json:"stt_piece_width"`
	HeightCM   int `json:"stt_piece_height"`
}

// BookingRequest 创建运单请求
type BookingRequest struct {
	OrderNo        string
	GoodsValue     int64
	Origin         string
	Destination    string
	SenderName     string
	SenderPhone    string
	RecipientName  string
	RecipientPhone string
	RecipientAddr  string
	ProductType    string
	Commodity      string
	Pieces         []BookingPiece
}

// BookingResult 创建运单结果
type BookingResult struct {
	STTNo string // 承运商运单号
}

// CreateBooking 创建运单；非幂等，调用方不得自动重试
func (c *Client) CreateBooking(ctx context.Context, req BookingRequest) (*BookingResult, error) {
	if strings.TrimSpace(req.Destination) == "" || strings.TrimSpace(req.ProductType) == "" {
		return nil, fmt.Errorf("%w: destination and product type are required", ErrConfigInvalid)
	}
	if len(req.Pieces) == 0 {
		return nil, fmt.Errorf("%w: at least one piece is required", ErrConfigInvalid)
	}
	origin := strings.TrimSpace(req.Origin)
	if origin == "" {
		origin = c.cfg.Origin
	}
	commodity := strings.TrimSpace(req.Commodity)
	if commodity == "" {
		commodity = c.cfg.Commodity
	}

	payload := map[string]interface{}{
		"stt": []map[string]interface{}{
			{
				"stt_no_ref_external":      req.OrderNo,
				"stt_goods_estimate_price": req.GoodsValue,
				"stt_origin":               origin,
				"stt_destination":          req.Destination,
				"stt_sender_name":          req.SenderName,
				"stt_sender_phone":         req.SenderPhone,
				"stt_recipient_name":       req.RecipientName,
				"stt_recipient_phone":      req.RecipientPhone,
				"stt_recipient_address":    req.RecipientAddr,
				"stt_product_type":         req.ProductType,
				"stt_commodity_code":       commodity,
				"stt_pieces":               req.Pieces,
			},
		},
	}

	body, err := c.doRequest(ctx, http.MethodPost, "/client/booking", payload)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data struct {
			Success bool `json:"success"`
			STT     []struct {
				STTNo string `json:"stt_no"`
			} `json:"stt"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	if !resp.Data.Success || len(resp.Data.STT) == 0 || strings.TrimSpace(resp.Data.STT[0].STTNo) == "" {
		return nil, fmt.Errorf("%w: booking rejected", ErrResponseInvalid)
	}

	return &BookingResult{STTNo: resp.Data.STT[0].STTNo}, nil
}

// TrackResult 运单轨迹结果
type TrackResult struct {
	STTNo         string `json:"stt_no"`
	CurrentStatus string `json:"current_status"`
	City          string `json:"city"`
	UpdatedAt     string `json:"updated_at"`
}

// Track 查询运单当前状态
func (c *Client) Track(ctx context.Context, sttNo string) (*TrackResult, error) {
	no := strings.TrimSpace(sttNo)
	if no == "" {
		return nil, fmt.Errorf("%w: stt_no is required", ErrConfigInvalid)
	}

	body, err := c.doRequest(ctx, http.MethodGet, "/v3/stt/track?q="+url.QueryEscape(no), nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data struct {
			STTNo         string `json:"stt_no"`
			CurrentStatus string `json:"current_status"`
			City          string `json:"city"`
			UpdatedAt     string `json:"updated_at"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	if strings.TrimSpace(resp.Data.CurrentStatus) == "" {
		return nil, fmt.Errorf("%w: missing current_status", ErrResponseInvalid)
	}

	return &TrackResult{
		STTNo:         resp.Data.STTNo,
		CurrentStatus: resp.Data.CurrentStatus,
		City:          resp.Data.City,
		UpdatedAt:     resp.Data.UpdatedAt,
	}, nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, payload interface{}) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	req.Header.Set("Authorization", "Basic "+c.cfg.AuthToken)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: http status %d", ErrRequestFailed, resp.StatusCode)
	}
	return body, nil
}
