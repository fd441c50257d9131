// Package secret reads configuration secrets from Secret Manager.
package secret

import (
	"context"
	"errors"
	"fmt"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	gax "github.com/googleapis/gax-go/v2"
)

// Accessor is the Secret Manager call in use.
type Accessor interface {
	AccessSecretVersion(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest, opts ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error)
}

var _ Accessor = (*secretmanager.Client)(nil)

// Resolver turns secret names into payloads.
type Resolver struct {
	client    Accessor
	projectID string
}

func NewResolver(client Accessor, projectID string) *Resolver {
	return &Resolver{client: client, projectID: strings.TrimSpace(projectID)}
}

// Resolve returns the payload of name. name is either a full resource
// (projects/p/secrets/s[/versions/v]) or a bare secret id read at its
// latest version in the resolver's project.
func (r *Resolver) Resolve(ctx context.Context, name string) (string, error) {
	if r == nil || r.client == nil {
		return "", errors.New("secret: secret manager client is nil")
	}
	res, err := r.resourceName(name)
	if err != nil {
		return "", err
	}

	resp, err := r.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: res})
	if err != nil {
		return "", fmt.Errorf("secret: access %s: %w", res, err)
	}
	if resp.GetPayload() == nil {
		return "", fmt.Errorf("secret: %s has no payload", res)
	}
	return strings.TrimSpace(string(resp.GetPayload().GetData())), nil
}

func (r *Resolver) resourceName(name string) (string, error) {
	name = strings.Trim(strings.TrimSpace(name), "/")
	switch {
	case name == "":
		return "", errors.New("secret: name is empty")
	case strings.HasPrefix(name, "projects/"):
		if !strings.Contains(name, "/versions/") {
			name += "/versions/latest"
		}
		return name, nil
	case r.projectID == "":
		return "", fmt.Errorf("secret: project id is required to resolve %q", name)
	default:
		return fmt.Sprintf("projects/%s/secrets/%s/versions/latest", r.projectID, name), nil
	}
}

// Value returns direct when set, otherwise the payload of secretName.
// Both empty yields "".
func (r *Resolver) Value(ctx context.Context, direct, secretName string) (string, error) {
	if v := strings.TrimSpace(direct); v != "" {
		return v, nil
	}
	if strings.TrimSpace(secretName) == "" {
		return "", nil
	}
	return r.Resolve(ctx, secretName)
}
