package repository

import (
	"context"
	"errors"
	"fmt"

	"dealership/internal/domain/entities"
	"dealership/internal/domain/valueobjects"
	"dealership/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

const salesCustomerCPFIndex = "customer_cpf-index"

// Position of each write inside the completion transaction. DynamoDB reports
// cancellation reasons in the same order.
const (
	completeSaleWrite = iota
	completeVehicleWrite
)

type saleItem struct {
	ID           string `dynamodbav:"id"`
	CustomerName string `dynamodbav:"customer_name"`
	CustomerCPF  string `dynamodbav:"customer_cpf"`
	VehicleVIN   string `dynamodbav:"vehicle_vin"`
	VehicleID    string `dynamodbav:"vehicle_id"`
	SalePrice    string `dynamodbav:"sale_price"`
	Status       string `dynamodbav:"status"`
	CreatedAt    string `dynamodbav:"created_at"`
	CompletedAt  string `dynamodbav:"completed_at,omitempty"`
	UpdatedAt    string `dynamodbav:"updated_at"`
}

// SaleDynamoRepository persists SaleOrder entities in DynamoDB.
//
// Table requirements:
//   - PK: id (string)
//   - GSI: customer_cpf-index (PK: customer_cpf)
//
// Status transitions are conditional on the stored status being PENDING.
// Completion also updates the vehicles table in the same TransactWriteItems call.
type SaleDynamoRepository struct {
	ddb               DynamoAPI
	tableName         string
	vehiclesTableName string
}

var _ interfaces.ISaleRepository = (*SaleDynamoRepository)(nil)

func NewSaleDynamoRepository(ddb DynamoAPI, tableName, vehiclesTableName string) *SaleDynamoRepository {
	return &SaleDynamoRepository{ddb: ddb, tableName: tableName, vehiclesTableName: vehiclesTableName}
}

func (r *SaleDynamoRepository) Create(ctx context.Context, s entities.SaleOrder) (entities.SaleOrder, error) {
	s.ID = uuid.NewString()
	av, err := attributevalue.MarshalMap(toSaleItem(s))
	if err != nil {
		return entities.SaleOrder{}, err
	}

	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{
			"#id": "id",
		},
	})
	if err != nil {
		return entities.SaleOrder{}, err
	}
	return s, nil
}

func (r *SaleDynamoRepository) GetByID(ctx context.Context, id string) (entities.SaleOrder, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.SaleOrder{}, err
	}
	if len(out.Item) == 0 {
		return entities.SaleOrder{}, nil
	}
	return decodeSale(out.Item)
}

func (r *SaleDynamoRepository) ListAll(ctx context.Context) ([]entities.SaleOrder, error) {
	return scanAll(ctx, r.ddb, &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
	}, decodeSale)
}

func (r *SaleDynamoRepository) ListByCustomerCPF(ctx context.Context, cpf valueobjects.CPF) ([]entities.SaleOrder, error) {
	return queryAll(ctx, r.ddb, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(salesCustomerCPFIndex),
		KeyConditionExpression: aws.String("customer_cpf = :cpf"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":cpf": &types.AttributeValueMemberS{Value: cpf.Value()},
		},
	}, decodeSale)
}

// Complete persists s as COMPLETED and marks its vehicle SOLD atomically.
func (r *SaleDynamoRepository) Complete(ctx context.Context, s entities.SaleOrder) (entities.SaleOrder, error) {
	items := make([]types.TransactWriteItem, 2)
	items[completeSaleWrite] = types.TransactWriteItem{
		Update: &types.Update{
			TableName: aws.String(r.tableName),
			Key: map[string]types.AttributeValue{
				"id": &types.AttributeValueMemberS{Value: s.ID},
			},
			ConditionExpression: aws.String("#status = :pending"),
			UpdateExpression:    aws.String("SET #status = :completed, #completed_at = :completed_at, #updated_at = :updated_at"),
			ExpressionAttributeNames: map[string]string{
				"#status":       "status",
				"#completed_at": "completed_at",
				"#updated_at":   "updated_at",
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pending":      &types.AttributeValueMemberS{Value: string(entities.SaleStatusPending)},
				":completed":    &types.AttributeValueMemberS{Value: string(entities.SaleStatusCompleted)},
				":completed_at": &types.AttributeValueMemberS{Value: formatTime(s.CompletedAt)},
				":updated_at":   &types.AttributeValueMemberS{Value: formatTime(s.UpdatedAt)},
			},
		},
	}
	items[completeVehicleWrite] = types.TransactWriteItem{
		Update: &types.Update{
			TableName: aws.String(r.vehiclesTableName),
			Key: map[string]types.AttributeValue{
				"id": &types.AttributeValueMemberS{Value: s.VehicleID},
			},
			ConditionExpression: aws.String("#status = :available"),
			UpdateExpression:    aws.String("SET #status = :sold, #updated_at = :updated_at"),
			ExpressionAttributeNames: map[string]string{
				"#status":     "status",
				"#updated_at": "updated_at",
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":available":  &types.AttributeValueMemberS{Value: string(entities.VehicleStatusAvailable)},
				":sold":       &types.AttributeValueMemberS{Value: string(entities.VehicleStatusSold)},
				":updated_at": &types.AttributeValueMemberS{Value: formatTime(s.UpdatedAt)},
			},
			ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
		},
	}

	_, err := r.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	if err != nil {
		return entities.SaleOrder{}, r.completionError(s, err)
	}
	return s, nil
}

// completionError translates a cancelled transaction into the domain error of
// the write whose condition failed.
func (r *SaleDynamoRepository) completionError(s entities.SaleOrder, err error) error {
	var tce *types.TransactionCanceledException
	if !errors.As(err, &tce) {
		return err
	}
	for i, reason := range tce.CancellationReasons {
		if aws.ToString(reason.Code) != "ConditionalCheckFailed" {
			continue
		}
		switch i {
		case completeSaleWrite:
			return fmt.Errorf("%w: sale %s", entities.ErrSaleInvalidStatus, s.ID)
		case completeVehicleWrite:
			if len(reason.Item) == 0 {
				return fmt.Errorf("vehicle %s of sale %s does not exist", s.VehicleID, s.ID)
			}
			return fmt.Errorf("%w: %s", entities.ErrVehicleAlreadySold, s.VehicleVIN)
		}
	}
	return err
}

// Cancel persists s as CANCELED if the stored sale is still PENDING.
func (r *SaleDynamoRepository) Cancel(ctx context.Context, s entities.SaleOrder) (entities.SaleOrder, error) {
	_, err := r.ddb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: s.ID},
		},
		ConditionExpression: aws.String("#status = :pending"),
		UpdateExpression:    aws.String("SET #status = :canceled, #updated_at = :updated_at"),
		ExpressionAttributeNames: map[string]string{
			"#status":     "status",
			"#updated_at": "updated_at",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pending":    &types.AttributeValueMemberS{Value: string(entities.SaleStatusPending)},
			":canceled":   &types.AttributeValueMemberS{Value: string(entities.SaleStatusCanceled)},
			":updated_at": &types.AttributeValueMemberS{Value: formatTime(s.UpdatedAt)},
		},
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return entities.SaleOrder{}, fmt.Errorf("%w: sale %s", entities.ErrSaleInvalidStatus, s.ID)
		}
		return entities.SaleOrder{}, err
	}
	return s, nil
}

func decodeSale(raw map[string]types.AttributeValue) (entities.SaleOrder, error) {
	it, err := unmarshalItem[saleItem](raw)
	if err != nil {
		return entities.SaleOrder{}, err
	}
	return fromSaleItem(it)
}

func toSaleItem(s entities.SaleOrder) saleItem {
	return saleItem{
		ID:           s.ID,
		CustomerName: s.CustomerName,
		CustomerCPF:  s.CustomerCPF.Value(),
		VehicleVIN:   s.VehicleVIN,
		VehicleID:    s.VehicleID,
		SalePrice:    s.SalePrice.String(),
		Status:       string(s.Status),
		CreatedAt:    formatTime(s.CreatedAt),
		CompletedAt:  formatTime(s.CompletedAt),
		UpdatedAt:    formatTime(s.UpdatedAt),
	}
}

func fromSaleItem(it saleItem) (entities.SaleOrder, error) {
	cpf, err := valueobjects.NewCPF(it.CustomerCPF)
	if err != nil {
		return entities.SaleOrder{}, fmt.Errorf("sale %s: %w", it.ID, err)
	}
	price, err := parseDecimal("sale_price", it.SalePrice)
	if err != nil {
		return entities.SaleOrder{}, fmt.Errorf("sale %s: %w", it.ID, err)
	}
	createdAt, err := parseTime(it.CreatedAt)
	if err != nil {
		return entities.SaleOrder{}, fmt.Errorf("sale %s created_at: %w", it.ID, err)
	}
	completedAt, err := parseTime(it.CompletedAt)
	if err != nil {
		return entities.SaleOrder{}, fmt.Errorf("sale %s completed_at: %w", it.ID, err)
	}
	updatedAt, err := parseTime(it.UpdatedAt)
	if err != nil {
		return entities.SaleOrder{}, fmt.Errorf("sale %s updated_at: %w", it.ID, err)
	}
	return entities.SaleOrder{
		ID:           it.ID,
		CustomerName: it.CustomerName,
		CustomerCPF:  cpf,
		VehicleVIN:   it.VehicleVIN,
		VehicleID:    it.VehicleID,
		SalePrice:    price,
		Status:       entities.SaleStatus(it.Status),
		CreatedAt:    createdAt,
		CompletedAt:  completedAt,
		UpdatedAt:    updatedAt,
	}, nil
}
