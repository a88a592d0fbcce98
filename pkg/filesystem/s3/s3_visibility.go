package s3

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/marmos91/bucketfs/pkg/filesystem"
)

// allUsersURI is the grantee URI S3 uses for anonymous access.
const allUsersURI = "http://acs.amazonaws.com/groups/global/AllUsers"

// VisibilityConverter translates between abstract visibility and S3 ACLs.
type VisibilityConverter interface {
	// VisibilityToACL returns the canned ACL applied on upload or ACL update.
	VisibilityToACL(visibility filesystem.Visibility) types.ObjectCannedACL

	// ACLToVisibility derives visibility from the grants of an object ACL.
	ACLToVisibility(grants []types.Grant) filesystem.Visibility

	// DefaultForDirectories returns the visibility of new directory markers.
	DefaultForDirectories() filesystem.Visibility
}

// PortableVisibilityConverter maps public to "public-read" and everything else
// to "private". An object is public when anyone may READ it.
type PortableVisibilityConverter struct {
	directoryDefault filesystem.Visibility
}

// NewPortableVisibilityConverter returns a converter whose directories default
// to directoryDefault, or to public when it is empty.
func NewPortableVisibilityConverter(directoryDefault filesystem.Visibility) *PortableVisibilityConverter {
	if directoryDefault == "" {
		directoryDefault = filesystem.Public
	}
	return &PortableVisibilityConverter{directoryDefault: directoryDefault}
}

func (c *PortableVisibilityConverter) VisibilityToACL(visibility filesystem.Visibility) types.ObjectCannedACL {
	if visibility == filesystem.Public {
		return types.ObjectCannedACLPublicRead
	}
	return types.ObjectCannedACLPrivate
}

func (c *PortableVisibilityConverter) ACLToVisibility(grants []types.Grant) filesystem.Visibility {
	for _, grant := range grants {
		if grant.Grantee == nil || aws.ToString(grant.Grantee.URI) != allUsersURI {
			continue
		}
		if grant.Permission == types.PermissionRead {
			return filesystem.Public
		}
	}
	return filesystem.Private
}

func (c *PortableVisibilityConverter) DefaultForDirectories() filesystem.Visibility {
	return c.directoryDefault
}

// ============================================================================
// Visibility Operations
// ============================================================================

// SetVisibility replaces the ACL of path with the canned ACL for visibility.
func (a *Adapter) SetVisibility(ctx context.Context, path string, visibility filesystem.Visibility) (err error) {
	start := time.Now()
	defer func() {
		a.metrics.ObserveOperation("SetVisibility", time.Since(start), err)
	}()

	key, err := a.objectKey(path)
	if err != nil {
		return filesystem.NewError(filesystem.ErrUnableToSetVisibility, path, err)
	}

	_, err = a.client.PutObjectAcl(ctx, &s3.PutObjectAclInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
		ACL:    a.visibility.VisibilityToACL(visibility),
	})
	if err != nil {
		return filesystem.NewError(filesystem.ErrUnableToSetVisibility, path, err)
	}

	return nil
}

// Visibility returns the current visibility of path derived from its ACL.
func (a *Adapter) Visibility(ctx context.Context, path string) (attrs *filesystem.FileAttributes, err error) {
	start := time.Now()
	defer func() {
		a.metrics.ObserveOperation("Visibility", time.Since(start), err)
	}()

	key, err := a.objectKey(path)
	if err != nil {
		return nil, filesystem.NewMetadataError(path, filesystem.MetadataVisibility, "", err)
	}

	visibility, err := a.fetchVisibility(ctx, key)
	if err != nil {
		return nil, filesystem.NewMetadataError(path, filesystem.MetadataVisibility, "", err)
	}

	return &filesystem.FileAttributes{
		Path:       a.prefixer.StripPrefix(key),
		Visibility: visibility,
	}, nil
}

func (a *Adapter) fetchVisibility(ctx context.Context, key string) (filesystem.Visibility, error) {
	result, err := a.client.GetObjectAcl(ctx, &s3.GetObjectAclInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", err
	}
	return a.visibility.ACLToVisibility(result.Grants), nil
}
