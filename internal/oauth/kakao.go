package oauth

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

	"github.com/dhkim-dev/markethub-backend/internal/models"
)

const (
	defaultKakaoAuthURL    = "https://kauth.kakao.com/oauth/authorize"
	defaultKakaoTokenURL   = "https://kauth.kakao.com/oauth/token"
	defaultKakaoProfileURL = "https://kapi.kakao.com/v2/user/me"
)

// KakaoConfig configures the Kakao OAuth provider. The URL fields exist
// so tests can point the provider at httptest servers.
type KakaoConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	AuthURL    string
	TokenURL   string
	ProfileURL string
}

// KakaoProvider implements the authorization-code flow against Kakao.
type KakaoProvider struct {
	config KakaoConfig
	client *http.Client
}

func NewKakaoProvider(config KakaoConfig) *KakaoProvider {
	if config.AuthURL == "" {
		config.AuthURL = defaultKakaoAuthURL
	}
	if config.TokenURL == "" {
		config.TokenURL = defaultKakaoTokenURL
	}
	if config.ProfileURL == "" {
		config.ProfileURL = defaultKakaoProfileURL
	}
	return &KakaoProvider{
		config: config,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *KakaoProvider) Name() string { return models.ProviderKakao }

func (p *KakaoProvider) LoginURL(state string) string {
	params := url.Values{
		"client_id":     {p.config.ClientID},
		"redirect_uri":  {p.config.RedirectURL},
		"response_type": {"code"},
		"state":         {state},
	}
	return p.config.AuthURL + "?" + params.Encode()
}

type kakaoTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// kakaoProfile mirrors the shape of /v2/user/me.
type kakaoProfile struct {
	ID           int64 `json:"id"`
	KakaoAccount struct {
		Email   string `json:"email"`
		Profile struct {
			Nickname        string `json:"nickname"`
			ProfileImageURL string `json:"profile_image_url"`
		} `json:"profile"`
	} `json:"kakao_account"`
}

func (p *KakaoProvider) Exchange(ctx context.Context, code string) (*UserInfo, error) {
	tokenResp, err := p.exchangeToken(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("kakao token exchange: %w", err)
	}

	profile, err := p.fetchProfile(ctx, tokenResp.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("kakao profile fetch: %w", err)
	}

	return &UserInfo{
		Provider:       models.ProviderKakao,
		ProviderUserID: strconv.FormatInt(profile.ID, 10),
		Nickname:       profile.KakaoAccount.Profile.Nickname,
		Email:          profile.KakaoAccount.Email,
		ProfileImage:   profile.KakaoAccount.Profile.ProfileImageURL,
	}, nil
}

func (p *KakaoProvider) exchangeToken(ctx context.Context, code string) (*kakaoTokenResponse, error) {
	data := url.Values{
		"grant_type":   {"authorization_code"},
		"client_id":    {p.config.ClientID},
		"redirect_uri": {p.config.RedirectURL},
		"code":         {code},
	}
	if p.config.ClientSecret != "" {
		data.Set("client_secret", p.config.ClientSecret)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.TokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var tokenResp kakaoTokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, fmt.Errorf("malformed token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return nil, fmt.Errorf("empty access token in response")
	}
	return &tokenResp, nil
}

func (p *KakaoProvider) fetchProfile(ctx context.Context, accessToken string) (*kakaoProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.config.ProfileURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("profile endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var profile kakaoProfile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, fmt.Errorf("malformed profile response: %w", err)
	}
	if profile.ID == 0 {
		return nil, fmt.Errorf("missing id in profile response")
	}
	return &profile, nil
}

var _ Provider = (*KakaoProvider)(nil)
