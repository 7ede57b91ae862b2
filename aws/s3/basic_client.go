package s3

import (
	"context"
	"io"
	"io/ioutil"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/pkg/errors"
)

const (
	listPageSize  = 1000
	maxObjectTags = 10 // S3's limit per object
)

func NewClient(sess *session.Session) Client {
	return NewClientWithAPI(s3.New(sess))
}

func NewClientWithAPI(api s3iface.S3API) Client {
	return &basicClient{api: api}
}

type basicClient struct {
	api s3iface.S3API
}

func (s *basicClient) List(ctx context.Context, bucket, prefix string) (objects []Object, err error) {
	objects = make([]Object, 0)
	lastKey := ""
	for {
		params := &s3.ListObjectsInput{
			Bucket:  aws.String(bucket),
			MaxKeys: aws.Int64(listPageSize),
			Prefix:  aws.String(prefix),
		}
		if lastKey != "" {
			params.Marker = aws.String(lastKey)
		}
		resp, err := s.api.ListObjectsWithContext(ctx, params)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to list s3://%v/%v", bucket, prefix)
		}
		for _, v := range resp.Contents {
			objects = append(objects, Object{Key: aws.StringValue(v.Key), Size: aws.Int64Value(v.Size)})
		}
		if len(resp.Contents) > 0 {
			lastKey = aws.StringValue(resp.Contents[len(resp.Contents)-1].Key)
		}
		if !aws.BoolValue(resp.IsTruncated) || len(resp.Contents) == 0 {
			break
		}
	}
	return
}

func (s *basicClient) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	body, err := s.Open(ctx, bucket, key)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	data, err := ioutil.ReadAll(body)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read s3://%v/%v", bucket, key)
	}
	return data, nil
}

func (s *basicClient) Open(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	res, err := s.api.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if awsErr, ok := err.(awserr.Error); ok && awsErr.Code() == s3.ErrCodeNoSuchKey {
			return nil, ErrKeyNotFound
		}
		return nil, errors.Wrapf(err, "unable to get s3://%v/%v", bucket, key)
	}
	return res.Body, nil
}

func (s *basicClient) Tag(ctx context.Context, bucket, key, tagKey, tagValue string) error {
	current, err := s.api.GetObjectTaggingWithContext(ctx, &s3.GetObjectTaggingInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return errors.Wrapf(err, "unable to read tags of s3://%v/%v", bucket, key)
	}
	tags := []*s3.Tag{{Key: aws.String(tagKey), Value: aws.String(tagValue)}}
	for _, t := range current.TagSet {
		if len(tags) == maxObjectTags { // S3 rejects the whole set beyond this, so later tags are lost.
			break
		}
		if aws.StringValue(t.Key) != tagKey { // if this is a tag we don't own...
			tags = append(tags, t)
		}
	}
	_, err = s.api.PutObjectTaggingWithContext(ctx, &s3.PutObjectTaggingInput{
		Bucket:  aws.String(bucket),
		Key:     aws.String(key),
		Tagging: &s3.Tagging{TagSet: tags},
	})
	if err != nil {
		return errors.Wrapf(err, "unable to tag s3://%v/%v", bucket, key)
	}
	return nil
}
