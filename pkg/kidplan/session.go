package kidplan

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"kidplan-downloader/pkg/discovery"
	errs "kidplan-downloader/pkg/errors"
	"kidplan-downloader/pkg/models"
)

// FetchKindergartens looks up the kindergartens the credentials give access to
func (c *Client) FetchKindergartens(ctx context.Context, creds models.Credentials) ([]models.Kindergarten, error) {
	var kids []models.Kindergarten
	if err := c.GetJSON(ctx, GetKindergartenIDsURL(c.baseURL, creds.Email, creds.Password), &kids); err != nil {
		return nil, fmt.Errorf("kindergarten lookup failed: %w", err)
	}
	if len(kids) == 0 {
		return nil, errs.New(errs.ErrorTypeAuth, "no kindergarten IDs returned, check credentials")
	}

	c.logger.DebugWithFields("Kindergartens found", map[string]interface{}{
		"count": len(kids),
	})
	return kids, nil
}

// SelectKindergarten picks a kindergarten by id, then by name, then the
// only entry when there is just one
func SelectKindergarten(kids []models.Kindergarten, id int64, name string) (models.Kindergarten, error) {
	if id != 0 {
		for _, k := range kids {
			if k.ID == id {
				return k, nil
			}
		}
		return models.Kindergarten{}, errs.New(errs.ErrorTypeNotFound,
			fmt.Sprintf("kindergarten id %d not found for this account", id))
	}

	if name = strings.TrimSpace(name); name != "" {
		for _, k := range kids {
			if strings.EqualFold(strings.TrimSpace(k.Name), name) {
				return k, nil
			}
		}
		return models.Kindergarten{}, errs.New(errs.ErrorTypeNotFound,
			fmt.Sprintf("kindergarten %q not found for this account", name))
	}

	if len(kids) == 1 {
		return kids[0], nil
	}

	options := make([]string, 0, len(kids))
	for _, k := range kids {
		options = append(options, fmt.Sprintf("%s (id=%d)", k.Name, k.ID))
	}
	return models.Kindergarten{}, errs.New(errs.ErrorTypePrecondition,
		"multiple kindergartens found, choose one with --kid or --kid-name. Options: "+strings.Join(options, ", "))
}

// Login submits the sign-in form for one kindergarten. The session cookie
// ends up in the client's jar.
func (c *Client) Login(ctx context.Context, creds models.Credentials, kid int64) error {
	form := url.Values{}
	form.Set("UserName", creds.Email)
	form.Set("Password", creds.Password)
	form.Set("RememberMe", "true")

	page, err := c.PostForm(ctx, GetLogOnURL(c.baseURL, kid), form)
	if err != nil {
		if errs.TypeOf(err) != errs.ErrorTypeNetwork {
			return errs.Wrap(errs.ErrorTypeAuth, "login failed", err)
		}
		return fmt.Errorf("login failed: %w", err)
	}
	if discovery.IsLoginPage(page) {
		return errs.New(errs.ErrorTypeAuth, "login failed: still on the sign-in page, check credentials")
	}

	c.logger.InfoWithFields("Logged in", map[string]interface{}{
		"kindergarten_id": kid,
	})
	return nil
}

// Connect runs the whole sign-in flow and returns the chosen kindergarten
func (c *Client) Connect(ctx context.Context, creds models.Credentials, id int64, name string) (models.Kindergarten, error) {
	if creds.Email == "" || creds.Password == "" {
		return models.Kindergarten{}, errs.New(errs.ErrorTypeAuth, "username and password are required")
	}

	kids, err := c.FetchKindergartens(ctx, creds)
	if err != nil {
		return models.Kindergarten{}, err
	}

	kid, err := SelectKindergarten(kids, id, name)
	if err != nil {
		return models.Kindergarten{}, err
	}

	if err := c.Login(ctx, creds, kid.ID); err != nil {
		return models.Kindergarten{}, err
	}
	return kid, nil
}
