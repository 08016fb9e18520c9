package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dukerupert/familist/internal/model"
)

type authResponse struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

// Login calls POST /api/auth/login and returns the user and a fresh token.
func (c *Client) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	var out authResponse
	in := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, in, &out); err != nil {
		return nil, "", err
	}
	return out.User, out.Token, nil
}

func (c *Client) Register(ctx context.Context, email, password, name string) (*model.User, string, error) {
	var out authResponse
	in := map[string]string{"email": email, "password": password, "name": name}
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", nil, in, &out); err != nil {
		return nil, "", err
	}
	return out.User, out.Token, nil
}

func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var out struct {
		User *model.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

// FamilyMembership is returned by family create and join. Token carries
// the new family claims and replaces the session token.
type FamilyMembership struct {
	Family *model.Family `json:"family"`
	User   *model.User   `json:"user"`
	Token  string        `json:"token"`
}

type FamilyDetail struct {
	Family  model.Family `json:"family"`
	Members []model.User `json:"members"`
}

func (c *Client) Family(ctx context.Context) (*FamilyDetail, error) {
	var out FamilyDetail
	if err := c.do(ctx, http.MethodGet, "/api/family", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListFamilies(ctx context.Context) ([]model.Family, error) {
	var out struct {
		Families []model.Family `json:"families"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/family/list", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Families, nil
}

func (c *Client) CreateFamily(ctx context.Context, name string) (*FamilyMembership, error) {
	var out FamilyMembership
	if err := c.do(ctx, http.MethodPost, "/api/family/create", nil, map[string]string{"name": name}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) JoinFamily(ctx context.Context, familyID int64) (*FamilyMembership, error) {
	var out FamilyMembership
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/family/join/%d", familyID), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Members(ctx context.Context) ([]model.User, error) {
	var out []model.User
	if err := c.do(ctx, http.MethodGet, "/api/members", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type NewMember struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role,omitempty"`
}

// AddMember creates an account inside the caller's family. Admin only.
func (c *Client) AddMember(ctx context.Context, m NewMember) (*model.User, error) {
	var out model.User
	if err := c.do(ctx, http.MethodPost, "/api/members", nil, m, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateMemberRole(ctx context.Context, userID int64, role string) (*model.User, error) {
	var out model.User
	path := fmt.Sprintf("/api/members/%d/role", userID)
	if err := c.do(ctx, http.MethodPatch, path, nil, map[string]string{"role": role}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
