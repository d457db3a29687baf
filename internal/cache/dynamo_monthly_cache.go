package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/jonboulle/clockwork"
	"github.com/npsdash/backend-go/internal/models"
	"github.com/rs/zerolog/log"
)

// DynamoDBClient defines the DynamoDB operations we need
type DynamoDBClient interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

const keyDateLayout = "2006-01-02"

// MonthlyKey identifies one monthly-means request.
type MonthlyKey struct {
	StationID string
	Start     time.Time
	End       time.Time
	DataTypes []string
}

// Query is the sort key: "start:end:TYPE1,TYPE2".
func (k MonthlyKey) Query() string {
	return fmt.Sprintf("%s:%s:%s",
		k.Start.Format(keyDateLayout), k.End.Format(keyDateLayout), strings.Join(k.DataTypes, ","))
}

func (k MonthlyKey) String() string {
	return k.StationID + ":" + k.Query()
}

type MonthlyMeanItem struct {
	Month    int     `dynamodbav:"month"`
	DataType string  `dynamodbav:"dataType"`
	Value    float64 `dynamodbav:"value"`
}

// MonthlyRecord is the DynamoDB item for one cached request.
type MonthlyRecord struct {
	StationID   string            `dynamodbav:"stationId"`
	Query       string            `dynamodbav:"query"`
	Means       []MonthlyMeanItem `dynamodbav:"means"`
	LastUpdated int64             `dynamodbav:"lastUpdated"`
	TTL         int64             `dynamodbav:"ttl"`
}

func newMonthlyRecord(key MonthlyKey, means models.MonthlyMeans) MonthlyRecord {
	rows := means.Rows(key.StationID)
	items := make([]MonthlyMeanItem, len(rows))
	for i, r := range rows {
		items[i] = MonthlyMeanItem{Month: int(r.Month), DataType: r.DataType, Value: r.Value}
	}
	return MonthlyRecord{
		StationID: key.StationID,
		Query:     key.Query(),
		Means:     items,
	}
}

func (r MonthlyRecord) MonthlyMeans() models.MonthlyMeans {
	means := make(models.MonthlyMeans, len(r.Means))
	for _, m := range r.Means {
		means[models.MonthKey{Month: time.Month(m.Month), DataType: m.DataType}] = m.Value
	}
	return means
}

func (r MonthlyRecord) Validate() error {
	if r.StationID == "" {
		return fmt.Errorf("station ID is required")
	}
	if r.Query == "" {
		return fmt.Errorf("query is required")
	}
	for i, m := range r.Means {
		if m.Month < 1 || m.Month > 12 {
			return fmt.Errorf("invalid month at index %d: %d", i, m.Month)
		}
		if m.DataType == "" {
			return fmt.Errorf("missing data type at index %d", i)
		}
	}
	return nil
}

// DynamoMonthlyCache stores monthly means in DynamoDB
type DynamoMonthlyCache struct {
	client    DynamoDBClient
	tableName string
	ttl       time.Duration
	clock     clockwork.Clock
}

func NewDynamoMonthlyCache(client DynamoDBClient, tableName string, ttl time.Duration, clock clockwork.Clock) *DynamoMonthlyCache {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &DynamoMonthlyCache{
		client:    client,
		tableName: tableName,
		ttl:       ttl,
		clock:     clock,
	}
}

// GetMeans returns the cached record, or nil if absent or expired.
func (c *DynamoMonthlyCache) GetMeans(ctx context.Context, key MonthlyKey) (*MonthlyRecord, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(c.tableName),
		Key: map[string]types.AttributeValue{
			"stationId": &types.AttributeValueMemberS{Value: key.StationID},
			"query":     &types.AttributeValueMemberS{Value: key.Query()},
		},
	}

	result, err := c.client.GetItem(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("getting monthly means from DynamoDB: %w", err)
	}

	if result.Item == nil {
		return nil, nil
	}

	var record MonthlyRecord
	if err := attributevalue.UnmarshalMap(result.Item, &record); err != nil {
		return nil, fmt.Errorf("unmarshaling monthly record: %w", err)
	}

	if c.clock.Now().Unix() >= record.TTL {
		log.Debug().
			Str("station_id", key.StationID).
			Str("query", key.Query()).
			Msg("Cache expired")
		return nil, nil
	}

	return &record, nil
}

func (c *DynamoMonthlyCache) SaveMeans(ctx context.Context, record MonthlyRecord) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("invalid monthly record: %w", err)
	}

	now := c.clock.Now().Unix()
	record.LastUpdated = now
	record.TTL = now + int64(c.ttl.Seconds())

	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return fmt.Errorf("marshaling monthly record: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(c.tableName),
		Item:      item,
	}

	if _, err := c.client.PutItem(ctx, input); err != nil {
		return fmt.Errorf("putting monthly means in DynamoDB: %w", err)
	}

	log.Debug().
		Str("station_id", record.StationID).
		Str("query", record.Query).
		Msg("Saved monthly means to cache")

	return nil
}
