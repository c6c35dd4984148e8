package fairos

import (
	"context"
	"fmt"

	bip39 "github.com/tyler-smith/go-bip39"

	"github.com/fairos-dfs/sdk-go/internal/httpx"
)

// UserExport identifies an exported user account.
type UserExport struct {
	Name    string `json:"user_name"`
	Address string `json:"address"`
}

// UserInfo describes the logged-in user.
type UserInfo struct {
	Name    string `json:"user_name"`
	Address string `json:"address"`
}

type signupResponse struct {
	Address  string `json:"address"`
	Mnemonic string `json:"mnemonic"`
}

type presenceResponse struct {
	Present bool `json:"present"`
}

type loggedInResponse struct {
	LoggedIn bool `json:"loggedin"`
}

// GenerateMnemonic produces a fresh 12-word BIP-39 mnemonic suitable for
// Signup.
func GenerateMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(128)
	if err != nil {
		return "", fmt.Errorf("fairos: generate mnemonic: %w", err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("fairos: generate mnemonic: %w", err)
	}
	return mnemonic, nil
}

// Signup creates a new user account and stores its session token. When
// mnemonic is empty the server derives one and returns it.
func (c *Client) Signup(ctx context.Context, username, password, mnemonic string) (address, returnedMnemonic string, err error) {
	payload := map[string]string{
		"user_name": username,
		"password":  password,
	}
	if mnemonic != "" {
		payload["mnemonic"] = mnemonic
	}
	var out signupResponse
	token, err := c.post(ctx, "/user/signup", payload, "", &out)
	if err != nil {
		return "", "", mapError(err, ErrUser)
	}
	if token != "" {
		c.sessions.Set(username, token)
	}
	return out.Address, out.Mnemonic, nil
}

// Login opens a session for an existing user and stores its token.
func (c *Client) Login(ctx context.Context, username, password string) error {
	payload := map[string]string{
		"user_name": username,
		"password":  password,
	}
	token, err := c.post(ctx, "/user/login", payload, "", nil)
	if err != nil {
		return mapError(err, ErrUser)
	}
	if token != "" {
		c.sessions.Set(username, token)
	}
	return nil
}

// ImportWithAddress recreates a user on this server from an account address
// and returns the imported account's address.
func (c *Client) ImportWithAddress(ctx context.Context, username, password, address string) (string, error) {
	payload := map[string]string{
		"user_name": username,
		"password":  password,
		"address":   address,
	}
	return c.importUser(ctx, username, payload)
}

// ImportWithMnemonic recreates a user on this server from its mnemonic and
// returns the imported account's address.
func (c *Client) ImportWithMnemonic(ctx context.Context, username, password, mnemonic string) (string, error) {
	payload := map[string]string{
		"user_name": username,
		"password":  password,
		"mnemonic":  mnemonic,
	}
	return c.importUser(ctx, username, payload)
}

func (c *Client) importUser(ctx context.Context, username string, payload map[string]string) (string, error) {
	var out struct {
		Address string `json:"address"`
	}
	token, err := c.post(ctx, "/user/import", payload, "", &out)
	if err != nil {
		return "", mapError(err, ErrUser)
	}
	if token != "" {
		c.sessions.Set(username, token)
	}
	return out.Address, nil
}

// DeleteUser removes the user from the server and drops its session.
func (c *Client) DeleteUser(ctx context.Context, username, password string) error {
	token, err := c.token(username)
	if err != nil {
		return err
	}
	payload := map[string]string{"password": password}
	if err := c.del(ctx, "/user/delete", payload, token, nil); err != nil {
		return mapError(err, ErrUser)
	}
	c.sessions.Remove(username)
	return nil
}

// UserExists reports whether a user name is taken on the server.
func (c *Client) UserExists(ctx context.Context, username string) (bool, error) {
	query := httpx.Query{}.Set("user_name", username)
	var out presenceResponse
	if err := c.get(ctx, "/user/present", query, "", &out); err != nil {
		return false, mapError(err, ErrUser)
	}
	return out.Present, nil
}

// IsLoggedIn reports whether the server still considers the user logged in.
func (c *Client) IsLoggedIn(ctx context.Context, username string) (bool, error) {
	query := httpx.Query{}.Set("user_name", username)
	var out loggedInResponse
	if err := c.get(ctx, "/user/isloggedin", query, "", &out); err != nil {
		return false, mapError(err, ErrUser)
	}
	return out.LoggedIn, nil
}

// Logout ends the server-side session and drops the stored token.
func (c *Client) Logout(ctx context.Context, username string) error {
	token, err := c.token(username)
	if err != nil {
		return err
	}
	if _, err := c.post(ctx, "/user/logout", nil, token, nil); err != nil {
		return mapError(err, ErrUser)
	}
	c.sessions.Remove(username)
	return nil
}

// ExportUser returns the user's name and account address for importing on
// another server.
func (c *Client) ExportUser(ctx context.Context, username string) (*UserExport, error) {
	token, err := c.token(username)
	if err != nil {
		return nil, err
	}
	var out UserExport
	if _, err := c.post(ctx, "/user/export", nil, token, &out); err != nil {
		return nil, mapError(err, ErrUser)
	}
	return &out, nil
}

// StatUser fetches the user's info from the server.
func (c *Client) StatUser(ctx context.Context, username string) (*UserInfo, error) {
	token, err := c.token(username)
	if err != nil {
		return nil, err
	}
	var out UserInfo
	if err := c.get(ctx, "/user/stat", nil, token, &out); err != nil {
		return nil, mapError(err, ErrUser)
	}
	return &out, nil
}
