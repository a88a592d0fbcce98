package s3

import (
	"context"
	"iter"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/marmos91/bucketfs/pkg/filesystem"
)

// ListContents lists the entries under path.
//
// Without deep, the listing uses "/" as delimiter: direct children are
// returned as files and nested entries are collapsed into one directory per
// common prefix. With deep, every key under path is returned, including
// directory markers.
//
// Pages are fetched lazily while the caller iterates. Breaking out of the loop
// stops pagination. A failed page is yielded as an ErrUnableToListContents
// error and ends the sequence. Entries are produced in backend order.
//
// Example:
//
//	for entry, err := range adapter.ListContents(ctx, "photos", false) {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(entry.Location())
//	}
func (a *Adapter) ListContents(ctx context.Context, path string, deep bool) iter.Seq2[filesystem.StorageAttributes, error] {
	return func(yield func(filesystem.StorageAttributes, error) bool) {
		start := time.Now()
		var err error
		defer func() {
			a.metrics.ObserveOperation("ListContents", time.Since(start), err)
		}()

		prefix, err := a.directoryKey(path)
		if err != nil {
			yield(nil, filesystem.NewError(filesystem.ErrUnableToListContents, path, err))
			return
		}

		input := &s3.ListObjectsV2Input{
			Bucket: aws.String(a.bucket),
			Prefix: aws.String(prefix),
		}
		if !deep {
			input.Delimiter = aws.String("/")
		}

		paginator := s3.NewListObjectsV2Paginator(a.client, input)
		for paginator.HasMorePages() {
			var page *s3.ListObjectsV2Output
			page, err = paginator.NextPage(ctx)
			if err != nil {
				yield(nil, filesystem.NewError(filesystem.ErrUnableToListContents, path, err))
				return
			}

			for _, commonPrefix := range page.CommonPrefixes {
				if !yield(a.mapDescriptor(describeCommonPrefix(commonPrefix)), nil) {
					return
				}
			}

			for _, obj := range page.Contents {
				// The marker of the listed directory itself
				if aws.ToString(obj.Key) == prefix {
					continue
				}
				if !yield(a.mapDescriptor(describeListedObject(obj)), nil) {
					return
				}
			}
		}
	}
}
