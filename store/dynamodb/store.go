package dynamodb

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/placewalk/placewalk/geo"
	"github.com/placewalk/placewalk/model"
	"github.com/placewalk/placewalk/store"
)

// Client is the slice of the DynamoDB API the store consumes.
// Narrow by design so tests can fake it.
type Client interface {
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// Store implements store.Store on DynamoDB.
type Store struct {
	client    Client
	table     string
	partition string
	idIndex   string
	logger    *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the structured logger. A nil logger disables logging.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Store over an existing client.
func New(client Client, cfg Config, opts ...Option) *Store {
	s := &Store{
		client:    client,
		table:     cfg.Table,
		partition: cfg.Partition,
		idIndex:   cfg.IDIndex,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dial resolves AWS credentials from the environment and creates a
// Store per cfg.
func Dial(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return New(client, cfg, opts...), nil
}

// ddbToken is the decoded cursor token: the main-table key of the last
// returned item, used as ExclusiveStartKey on the next call.
type ddbToken struct {
	PK string `json:"pk"`
	SK string `json:"sk"`
}

// FetchPage implements store.Store.
//
// DynamoDB applies Limit before FilterExpression, so one Query can
// come back short while more matching rows exist; the fill loop keeps
// querying until the page is full or the partition is exhausted, which
// preserves the "a short page is terminal" contract.
func (s *Store) FetchPage(ctx context.Context, q store.PageQuery) (store.Result, error) {
	filterKey := q.Filter.Key()
	if q.Cursor != nil && q.Cursor.Filter != filterKey {
		return store.Result{}, &store.ErrCursorMismatch{Got: q.Cursor.Filter, Want: filterKey}
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}

	var startKey map[string]types.AttributeValue
	if q.Cursor != nil {
		tok, err := decodeToken(q.Cursor.Token)
		if err != nil {
			return store.Result{}, err
		}
		startKey = map[string]types.AttributeValue{
			"pk": &types.AttributeValueMemberS{Value: tok.PK},
			"sk": &types.AttributeValueMemberS{Value: tok.SK},
		}
	}

	input := s.queryInput(q.Filter, limit)
	entries := make([]model.Entry, 0, limit)
	var lastKey ddbToken
	exhausted := false

	for len(entries) < limit {
		input.ExclusiveStartKey = startKey
		out, err := s.client.Query(ctx, input)
		if err != nil {
			return store.Result{}, fmt.Errorf("query catalog page: %w", err)
		}

		for _, item := range out.Items {
			entry, key, err := decodeItem(item)
			if err != nil {
				// One bad row never takes down the page.
				s.logger.Warn("skipping malformed catalog item", "error", err)
				continue
			}
			entries = append(entries, entry)
			lastKey = key
			if len(entries) == limit {
				break
			}
		}

		if out.LastEvaluatedKey == nil {
			exhausted = true
			break
		}
		startKey = out.LastEvaluatedKey
	}

	res := store.Result{Entries: entries}
	if len(entries) == limit && !exhausted {
		res.HasMore = true
		res.NextCursor = &model.Cursor{Token: encodeToken(lastKey), Filter: filterKey}
	}
	return res, nil
}

// FetchOne implements store.Store via the id GSI.
func (s *Store) FetchOne(ctx context.Context, id string) (model.Entry, error) {
	out, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		IndexName:              aws.String(s.idIndex),
		KeyConditionExpression: aws.String("id = :id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":id": &types.AttributeValueMemberS{Value: id},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return model.Entry{}, fmt.Errorf("query entry by id: %w", err)
	}
	if len(out.Items) == 0 {
		return model.Entry{}, fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}

	entry, _, err := decodeItem(out.Items[0])
	if err != nil {
		return model.Entry{}, fmt.Errorf("decode entry %s: %w", id, err)
	}
	return entry, nil
}

func (s *Store) queryInput(f store.Filter, limit int) *dynamodb.QueryInput {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		KeyConditionExpression: aws.String("pk = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: s.partition},
		},
		ScanIndexForward: aws.Bool(false), // descending UpdatedAt
		Limit:            aws.Int32(int32(limit)),
	}

	if len(f) == 0 {
		return input
	}

	names := map[string]string{"#facets": "facets"}
	expr := ""
	i := 0
	for k, v := range f {
		nameKey := fmt.Sprintf("#f%d", i)
		valueKey := fmt.Sprintf(":f%d", i)
		names[nameKey] = k
		input.ExpressionAttributeValues[valueKey] = &types.AttributeValueMemberS{Value: v}
		if expr != "" {
			expr += " AND "
		}
		expr += fmt.Sprintf("#facets.%s = %s", nameKey, valueKey)
		i++
	}
	input.FilterExpression = aws.String(expr)
	input.ExpressionAttributeNames = names
	return input
}

// SortKey builds the table sort key for an entry: zero-padded
// UpdatedAt nanos plus the ID, so lexicographic order equals
// (UpdatedAt, ID) order.
func SortKey(e model.Entry) string {
	return fmt.Sprintf("%020d#%s", e.UpdatedAt.UnixNano(), e.ID)
}

// EncodeItem builds the DynamoDB item for an entry, for seeding tools
// and tests.
func EncodeItem(partition string, e model.Entry) map[string]types.AttributeValue {
	item := map[string]types.AttributeValue{
		"pk":         &types.AttributeValueMemberS{Value: partition},
		"sk":         &types.AttributeValueMemberS{Value: SortKey(e)},
		"id":         &types.AttributeValueMemberS{Value: e.ID},
		"name":       &types.AttributeValueMemberS{Value: e.Name},
		"updated_at": &types.AttributeValueMemberN{Value: strconv.FormatInt(e.UpdatedAt.UnixNano(), 10)},
	}
	if e.AltName != "" {
		item["alt_name"] = &types.AttributeValueMemberS{Value: e.AltName}
	}
	if e.Locality != "" {
		item["locality"] = &types.AttributeValueMemberS{Value: e.Locality}
	}
	if e.ImageKey != "" {
		item["image_key"] = &types.AttributeValueMemberS{Value: e.ImageKey}
	}
	if e.Coordinate != nil {
		item["lat"] = &types.AttributeValueMemberN{Value: strconv.FormatFloat(e.Coordinate.Lat, 'f', -1, 64)}
		item["lon"] = &types.AttributeValueMemberN{Value: strconv.FormatFloat(e.Coordinate.Lon, 'f', -1, 64)}
	}
	if e.FoundedYear != nil {
		item["founded_year"] = &types.AttributeValueMemberN{Value: strconv.Itoa(*e.FoundedYear)}
	}
	if len(e.Facets) > 0 {
		facets := make(map[string]types.AttributeValue, len(e.Facets))
		for k, v := range e.Facets {
			facets[k] = &types.AttributeValueMemberS{Value: v}
		}
		item["facets"] = &types.AttributeValueMemberM{Value: facets}
	}
	return item
}

func decodeItem(item map[string]types.AttributeValue) (model.Entry, ddbToken, error) {
	var key ddbToken
	pk, ok := item["pk"].(*types.AttributeValueMemberS)
	if !ok {
		return model.Entry{}, key, fmt.Errorf("missing pk attribute")
	}
	sk, ok := item["sk"].(*types.AttributeValueMemberS)
	if !ok {
		return model.Entry{}, key, fmt.Errorf("missing sk attribute")
	}
	key = ddbToken{PK: pk.Value, SK: sk.Value}

	id, ok := item["id"].(*types.AttributeValueMemberS)
	if !ok || id.Value == "" {
		return model.Entry{}, key, fmt.Errorf("missing id attribute")
	}
	updatedAttr, ok := item["updated_at"].(*types.AttributeValueMemberN)
	if !ok {
		return model.Entry{}, key, fmt.Errorf("missing updated_at attribute")
	}
	nanos, err := strconv.ParseInt(updatedAttr.Value, 10, 64)
	if err != nil {
		return model.Entry{}, key, fmt.Errorf("parse updated_at: %w", err)
	}

	entry := model.Entry{
		ID:        id.Value,
		UpdatedAt: time.Unix(0, nanos).UTC(),
	}
	entry.Name = stringAttr(item, "name")
	entry.AltName = stringAttr(item, "alt_name")
	entry.Locality = stringAttr(item, "locality")
	entry.ImageKey = stringAttr(item, "image_key")

	lat, latOK, err := floatAttr(item, "lat")
	if err != nil {
		return model.Entry{}, key, err
	}
	lon, lonOK, err := floatAttr(item, "lon")
	if err != nil {
		return model.Entry{}, key, err
	}
	if latOK && lonOK {
		entry.Coordinate = &geo.Point{Lat: lat, Lon: lon}
	}

	if yearAttr, ok := item["founded_year"].(*types.AttributeValueMemberN); ok {
		year, err := strconv.Atoi(yearAttr.Value)
		if err != nil {
			return model.Entry{}, key, fmt.Errorf("parse founded_year: %w", err)
		}
		entry.FoundedYear = &year
	}

	if facetsAttr, ok := item["facets"].(*types.AttributeValueMemberM); ok {
		facets := make(map[string]string, len(facetsAttr.Value))
		for k, v := range facetsAttr.Value {
			sv, ok := v.(*types.AttributeValueMemberS)
			if !ok {
				return model.Entry{}, key, fmt.Errorf("facet %s is not a string", k)
			}
			facets[k] = sv.Value
		}
		entry.Facets = facets
	}

	return entry, key, nil
}

func stringAttr(item map[string]types.AttributeValue, name string) string {
	if v, ok := item[name].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

func floatAttr(item map[string]types.AttributeValue, name string) (float64, bool, error) {
	v, ok := item[name].(*types.AttributeValueMemberN)
	if !ok {
		return 0, false, nil
	}
	f, err := strconv.ParseFloat(v.Value, 64)
	if err != nil {
		return 0, false, fmt.Errorf("parse %s: %w", name, err)
	}
	return f, true, nil
}

func encodeToken(tok ddbToken) string {
	b, _ := json.Marshal(tok)
	return base64.RawURLEncoding.EncodeToString(b)
}

func decodeToken(s string) (ddbToken, error) {
	var tok ddbToken
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return tok, fmt.Errorf("malformed cursor token: %w", err)
	}
	if err := json.Unmarshal(b, &tok); err != nil {
		return tok, fmt.Errorf("malformed cursor token: %w", err)
	}
	return tok, nil
}
