package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"dealership/internal/domain/entities"
	"dealership/internal/usecase"
	"dealership/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

const (
	vehiclesVINIndex    = "vin-index"
	vehiclesStatusIndex = "status-index"
)

const vinMarkerPrefix = "VIN#"

// positions in the create transaction
const (
	createVehicleWrite = iota
	createVINMarkerWrite
)

type vehicleItem struct {
	ID        string `dynamodbav:"id"`
	Make      string `dynamodbav:"make"`
	Model     string `dynamodbav:"model"`
	Year      int    `dynamodbav:"year"`
	VIN       string `dynamodbav:"vin"`
	Color     string `dynamodbav:"color"`
	Status    string `dynamodbav:"status"`
	Price     string `dynamodbav:"price"`
	CreatedAt string `dynamodbav:"created_at"`
	UpdatedAt string `dynamodbav:"updated_at"`
}

// VehicleDynamoRepository persists Vehicle entities in DynamoDB.
//
// Table requirements:
//   - PK: id (string)
//   - GSI: vin-index (PK: vin)
//   - GSI: status-index (PK: status)
//
// VIN uniqueness is held by marker items (id "VIN#<vin>") in the same table.
//
// Price is stored as a decimal string to keep cents exact.
type VehicleDynamoRepository struct {
	ddb       DynamoAPI
	tableName string
}

var _ interfaces.IVehicleRepository = (*VehicleDynamoRepository)(nil)

func NewVehicleDynamoRepository(ddb DynamoAPI, tableName string) *VehicleDynamoRepository {
	return &VehicleDynamoRepository{ddb: ddb, tableName: tableName}
}

// Create writes the vehicle together with a VIN marker item in one transaction.
// The marker key is derived from the VIN, so a second vehicle with the same VIN
// fails its condition even before vin-index has caught up.
func (r *VehicleDynamoRepository) Create(ctx context.Context, v entities.Vehicle) (entities.Vehicle, error) {
	v.ID = uuid.NewString()
	av, err := attributevalue.MarshalMap(toVehicleItem(v))
	if err != nil {
		return entities.Vehicle{}, err
	}

	notExists := aws.String("attribute_not_exists(#id)")
	names := map[string]string{"#id": "id"}

	items := make([]types.TransactWriteItem, 2)
	items[createVehicleWrite] = types.TransactWriteItem{Put: &types.Put{
		TableName:                aws.String(r.tableName),
		Item:                     av,
		ConditionExpression:      notExists,
		ExpressionAttributeNames: names,
	}}
	items[createVINMarkerWrite] = types.TransactWriteItem{Put: &types.Put{
		TableName: aws.String(r.tableName),
		Item: map[string]types.AttributeValue{
			"id":         &types.AttributeValueMemberS{Value: vinMarkerKey(v.VIN)},
			"vehicle_id": &types.AttributeValueMemberS{Value: v.ID},
		},
		ConditionExpression:      notExists,
		ExpressionAttributeNames: names,
	}}

	_, err = r.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	if err != nil {
		var tce *types.TransactionCanceledException
		if errors.As(err, &tce) && len(tce.CancellationReasons) > createVINMarkerWrite &&
			aws.ToString(tce.CancellationReasons[createVINMarkerWrite].Code) == "ConditionalCheckFailed" {
			return entities.Vehicle{}, fmt.Errorf("%w: %s", usecase.ErrDuplicateVIN, v.VIN)
		}
		return entities.Vehicle{}, err
	}
	return v, nil
}

// vinMarkerKey is the id of the item reserving a VIN. Marker items carry no
// vin or status attribute, so they never appear in either index.
func vinMarkerKey(vin string) string {
	return vinMarkerPrefix + vin
}

func isVINMarker(id string) bool {
	return strings.HasPrefix(id, vinMarkerPrefix)
}

func (r *VehicleDynamoRepository) GetByID(ctx context.Context, id string) (entities.Vehicle, error) {
	if isVINMarker(id) {
		return entities.Vehicle{}, nil
	}
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.Vehicle{}, err
	}
	if len(out.Item) == 0 {
		return entities.Vehicle{}, nil
	}
	return decodeVehicle(out.Item)
}

func (r *VehicleDynamoRepository) GetByVIN(ctx context.Context, vin string) (entities.Vehicle, error) {
	out, err := r.ddb.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(vehiclesVINIndex),
		KeyConditionExpression: aws.String("#vin = :vin"),
		ExpressionAttributeNames: map[string]string{
			"#vin": "vin",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":vin": &types.AttributeValueMemberS{Value: vin},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return entities.Vehicle{}, err
	}
	if len(out.Items) == 0 {
		return entities.Vehicle{}, nil
	}
	return decodeVehicle(out.Items[0])
}

// ListByStatus returns the vehicles in status, cheapest first. The index has no
// sort key on price, so ordering happens after all pages are read.
func (r *VehicleDynamoRepository) ListByStatus(ctx context.Context, status entities.VehicleStatus) ([]entities.Vehicle, error) {
	vs, err := queryAll(ctx, r.ddb, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(vehiclesStatusIndex),
		KeyConditionExpression: aws.String("#status = :status"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status": &types.AttributeValueMemberS{Value: string(status)},
		},
	}, decodeVehicle)
	if err != nil {
		return nil, err
	}
	entities.SortByPrice(vs)
	return vs, nil
}

// Update rewrites the descriptive attributes only; vin and status are left alone.
// A missing vehicle yields the zero Vehicle and a nil error.
func (r *VehicleDynamoRepository) Update(ctx context.Context, v entities.Vehicle) (entities.Vehicle, error) {
	if isVINMarker(v.ID) {
		return entities.Vehicle{}, nil
	}
	out, err := r.ddb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: v.ID},
		},
		ConditionExpression: aws.String("attribute_exists(#id)"),
		UpdateExpression:    aws.String("SET #make = :make, #model = :model, #year = :year, #color = :color, #price = :price, #updated_at = :updated_at"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":make":       &types.AttributeValueMemberS{Value: v.Make},
			":model":      &types.AttributeValueMemberS{Value: v.Model},
			":year":       &types.AttributeValueMemberN{Value: strconv.Itoa(v.Year)},
			":color":      &types.AttributeValueMemberS{Value: v.Color},
			":price":      &types.AttributeValueMemberS{Value: v.Price.String()},
			":updated_at": &types.AttributeValueMemberS{Value: formatTime(v.UpdatedAt)},
		},
		ExpressionAttributeNames: mergeNames(map[string]string{
			"#make":       "make",
			"#model":      "model",
			"#year":       "year",
			"#color":      "color",
			"#price":      "price",
			"#updated_at": "updated_at",
		}, map[string]string{"#id": "id"}),
		ReturnValues: types.ReturnValueAllNew,
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return entities.Vehicle{}, nil
		}
		return entities.Vehicle{}, err
	}
	if len(out.Attributes) == 0 {
		return entities.Vehicle{}, nil
	}
	return decodeVehicle(out.Attributes)
}

func decodeVehicle(raw map[string]types.AttributeValue) (entities.Vehicle, error) {
	it, err := unmarshalItem[vehicleItem](raw)
	if err != nil {
		return entities.Vehicle{}, err
	}
	return fromVehicleItem(it)
}

func toVehicleItem(v entities.Vehicle) vehicleItem {
	return vehicleItem{
		ID:        v.ID,
		Make:      v.Make,
		Model:     v.Model,
		Year:      v.Year,
		VIN:       v.VIN,
		Color:     v.Color,
		Status:    string(v.Status),
		Price:     v.Price.String(),
		CreatedAt: formatTime(v.CreatedAt),
		UpdatedAt: formatTime(v.UpdatedAt),
	}
}

func fromVehicleItem(it vehicleItem) (entities.Vehicle, error) {
	price, err := parseDecimal("price", it.Price)
	if err != nil {
		return entities.Vehicle{}, fmt.Errorf("vehicle %s: %w", it.ID, err)
	}
	createdAt, err := parseTime(it.CreatedAt)
	if err != nil {
		return entities.Vehicle{}, fmt.Errorf("vehicle %s created_at: %w", it.ID, err)
	}
	updatedAt, err := parseTime(it.UpdatedAt)
	if err != nil {
		return entities.Vehicle{}, fmt.Errorf("vehicle %s updated_at: %w", it.ID, err)
	}
	return entities.Vehicle{
		ID:        it.ID,
		Make:      it.Make,
		Model:     it.Model,
		Year:      it.Year,
		VIN:       it.VIN,
		Color:     it.Color,
		Status:    entities.VehicleStatus(it.Status),
		Price:     price,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}
