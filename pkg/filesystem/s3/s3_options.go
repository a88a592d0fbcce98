package s3

import (
	"fmt"
	"math"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/marmos91/bucketfs/pkg/filesystem"
	"github.com/mitchellh/mapstructure"
)

// ObjectOption names a filesystem.Config key forwarded verbatim to PutObject
// and CopyObject requests. Keys outside this list are ignored.
type ObjectOption string

const (
	OptionACL                     ObjectOption = "ACL"
	OptionCacheControl            ObjectOption = "CacheControl"
	OptionContentDisposition      ObjectOption = "ContentDisposition"
	OptionContentEncoding         ObjectOption = "ContentEncoding"
	OptionContentLength           ObjectOption = "ContentLength"
	OptionContentType             ObjectOption = "ContentType"
	OptionExpires                 ObjectOption = "Expires"
	OptionGrantFullControl        ObjectOption = "GrantFullControl"
	OptionGrantRead               ObjectOption = "GrantRead"
	OptionGrantReadACP            ObjectOption = "GrantReadACP"
	OptionGrantWriteACP           ObjectOption = "GrantWriteACP"
	OptionMetadata                ObjectOption = "Metadata"
	OptionRequestPayer            ObjectOption = "RequestPayer"
	OptionSSECustomerAlgorithm    ObjectOption = "SSECustomerAlgorithm"
	OptionSSECustomerKey          ObjectOption = "SSECustomerKey"
	OptionSSECustomerKeyMD5       ObjectOption = "SSECustomerKeyMD5"
	OptionSSEKMSKeyID             ObjectOption = "SSEKMSKeyId"
	OptionServerSideEncryption    ObjectOption = "ServerSideEncryption"
	OptionStorageClass            ObjectOption = "StorageClass"
	OptionTagging                 ObjectOption = "Tagging"
	OptionWebsiteRedirectLocation ObjectOption = "WebsiteRedirectLocation"

	// OptionMetadataDirective is honoured by Copy only (COPY or REPLACE).
	OptionMetadataDirective ObjectOption = "MetadataDirective"
)

// ObjectOptions lists every option forwarded to upload requests.
var ObjectOptions = []ObjectOption{
	OptionACL,
	OptionCacheControl,
	OptionContentDisposition,
	OptionContentEncoding,
	OptionContentLength,
	OptionContentType,
	OptionExpires,
	OptionGrantFullControl,
	OptionGrantRead,
	OptionGrantReadACP,
	OptionGrantWriteACP,
	OptionMetadata,
	OptionRequestPayer,
	OptionSSECustomerAlgorithm,
	OptionSSECustomerKey,
	OptionSSECustomerKeyMD5,
	OptionSSEKMSKeyID,
	OptionServerSideEncryption,
	OptionStorageClass,
	OptionTagging,
	OptionWebsiteRedirectLocation,
}

// objectParams holds the allow-listed options decoded from a filesystem.Config.
type objectParams struct {
	ACL                     types.ObjectCannedACL      `mapstructure:"ACL"`
	CacheControl            *string                    `mapstructure:"CacheControl"`
	ContentDisposition      *string                    `mapstructure:"ContentDisposition"`
	ContentEncoding         *string                    `mapstructure:"ContentEncoding"`
	ContentLength           *int64                     `mapstructure:"ContentLength"`
	ContentType             *string                    `mapstructure:"ContentType"`
	Expires                 *time.Time                 `mapstructure:"Expires"`
	GrantFullControl        *string                    `mapstructure:"GrantFullControl"`
	GrantRead               *string                    `mapstructure:"GrantRead"`
	GrantReadACP            *string                    `mapstructure:"GrantReadACP"`
	GrantWriteACP           *string                    `mapstructure:"GrantWriteACP"`
	Metadata                map[string]string          `mapstructure:"Metadata"`
	RequestPayer            types.RequestPayer         `mapstructure:"RequestPayer"`
	SSECustomerAlgorithm    *string                    `mapstructure:"SSECustomerAlgorithm"`
	SSECustomerKey          *string                    `mapstructure:"SSECustomerKey"`
	SSECustomerKeyMD5       *string                    `mapstructure:"SSECustomerKeyMD5"`
	SSEKMSKeyID             *string                    `mapstructure:"SSEKMSKeyId"`
	ServerSideEncryption    types.ServerSideEncryption `mapstructure:"ServerSideEncryption"`
	StorageClass            types.StorageClass         `mapstructure:"StorageClass"`
	Tagging                 *string                    `mapstructure:"Tagging"`
	WebsiteRedirectLocation *string                    `mapstructure:"WebsiteRedirectLocation"`
}

// enumValues lists the accepted values of the enum-typed options.
var enumValues = map[reflect.Type][]string{
	reflect.TypeOf(types.ObjectCannedACL("")):      enumStrings(types.ObjectCannedACL("").Values()),
	reflect.TypeOf(types.RequestPayer("")):         enumStrings(types.RequestPayer("").Values()),
	reflect.TypeOf(types.ServerSideEncryption("")): enumStrings(types.ServerSideEncryption("").Values()),
	reflect.TypeOf(types.StorageClass("")):         enumStrings(types.StorageClass("").Values()),
}

func enumStrings[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

// parseObjectParams decodes the allow-listed options of cfg.
//
// Unset options and empty strings are skipped. Strings are converted to
// numbers where needed, times are RFC 3339 strings or Unix seconds and
// enum options must be one of the values S3 accepts. Any option that cannot
// be decoded is an error.
func parseObjectParams(cfg filesystem.Config) (objectParams, error) {
	input := make(map[string]any, len(ObjectOptions))
	for _, opt := range ObjectOptions {
		v, ok := cfg.Get(string(opt))
		if !ok || v == nil {
			continue
		}
		if s, isString := v.(string); isString && s == "" {
			continue
		}
		input[string(opt)] = v
	}

	var p objectParams
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &p,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeHookFunc(time.RFC3339),
			unixTimeHook,
			int64RangeHook,
			enumHook,
		),
	})
	if err != nil {
		return objectParams{}, err
	}
	if err := decoder.Decode(input); err != nil {
		return objectParams{}, fmt.Errorf("invalid object options: %w", err)
	}

	if p.ContentLength != nil && *p.ContentLength < 0 {
		return objectParams{}, fmt.Errorf("invalid object options: ContentLength must not be negative, got %d", *p.ContentLength)
	}
	if len(p.Metadata) == 0 {
		p.Metadata = nil
	}

	return p, nil
}

// unixTimeHook decodes integer options into time.Time as Unix seconds.
func unixTimeHook(from, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(time.Time{}) {
		return data, nil
	}
	v := reflect.ValueOf(data)
	switch from.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return time.Unix(v.Int(), 0).UTC(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if v.Uint() > math.MaxInt64 {
			return nil, fmt.Errorf("%d overflows a Unix timestamp", v.Uint())
		}
		return time.Unix(int64(v.Uint()), 0).UTC(), nil
	default:
		return data, nil
	}
}

// int64RangeHook rejects unsigned and float inputs that do not fit an int64.
func int64RangeHook(from, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.Int64 {
		return data, nil
	}
	v := reflect.ValueOf(data)
	switch from.Kind() {
	case reflect.Uint, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if v.Uint() > math.MaxInt64 {
			return nil, fmt.Errorf("%d overflows int64", v.Uint())
		}
	case reflect.Float32, reflect.Float64:
		f := v.Float()
		if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return nil, fmt.Errorf("%v is not an int64", f)
		}
	}
	return data, nil
}

// enumHook rejects string values outside the enum of the target type.
func enumHook(from, to reflect.Type, data any) (any, error) {
	allowed, ok := enumValues[to]
	if !ok || from.Kind() != reflect.String {
		return data, nil
	}
	value := reflect.ValueOf(data).String()
	if !slices.Contains(allowed, value) {
		return nil, fmt.Errorf("unsupported value %q (expected one of %s)", value, strings.Join(allowed, ", "))
	}
	return data, nil
}

func (p objectParams) putObjectInput(bucket, key string) *s3.PutObjectInput {
	return &s3.PutObjectInput{
		Bucket:                  aws.String(bucket),
		Key:                     aws.String(key),
		ACL:                     p.ACL,
		CacheControl:            p.CacheControl,
		ContentDisposition:      p.ContentDisposition,
		ContentEncoding:         p.ContentEncoding,
		ContentLength:           p.ContentLength,
		ContentType:             p.ContentType,
		Expires:                 p.Expires,
		GrantFullControl:        p.GrantFullControl,
		GrantRead:               p.GrantRead,
		GrantReadACP:            p.GrantReadACP,
		GrantWriteACP:           p.GrantWriteACP,
		Metadata:                p.Metadata,
		RequestPayer:            p.RequestPayer,
		SSECustomerAlgorithm:    p.SSECustomerAlgorithm,
		SSECustomerKey:          p.SSECustomerKey,
		SSECustomerKeyMD5:       p.SSECustomerKeyMD5,
		SSEKMSKeyId:             p.SSEKMSKeyID,
		ServerSideEncryption:    p.ServerSideEncryption,
		StorageClass:            p.StorageClass,
		Tagging:                 p.Tagging,
		WebsiteRedirectLocation: p.WebsiteRedirectLocation,
	}
}

// copyObjectInput builds a CopyObject request. ContentLength does not apply to
// server-side copies and is dropped.
func (p objectParams) copyObjectInput(bucket, sourceKey, destinationKey string) *s3.CopyObjectInput {
	return &s3.CopyObjectInput{
		Bucket:                  aws.String(bucket),
		Key:                     aws.String(destinationKey),
		CopySource:              aws.String(copySource(bucket, sourceKey)),
		ACL:                     p.ACL,
		CacheControl:            p.CacheControl,
		ContentDisposition:      p.ContentDisposition,
		ContentEncoding:         p.ContentEncoding,
		ContentType:             p.ContentType,
		Expires:                 p.Expires,
		GrantFullControl:        p.GrantFullControl,
		GrantRead:               p.GrantRead,
		GrantReadACP:            p.GrantReadACP,
		GrantWriteACP:           p.GrantWriteACP,
		Metadata:                p.Metadata,
		RequestPayer:            p.RequestPayer,
		SSECustomerAlgorithm:    p.SSECustomerAlgorithm,
		SSECustomerKey:          p.SSECustomerKey,
		SSECustomerKeyMD5:       p.SSECustomerKeyMD5,
		SSEKMSKeyId:             p.SSEKMSKeyID,
		ServerSideEncryption:    p.ServerSideEncryption,
		StorageClass:            p.StorageClass,
		Tagging:                 p.Tagging,
		WebsiteRedirectLocation: p.WebsiteRedirectLocation,
	}
}
