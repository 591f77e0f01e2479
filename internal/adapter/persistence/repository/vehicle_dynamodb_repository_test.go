package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"dealership/internal/domain/entities"
	"dealership/internal/usecase"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"
)

func sampleVehicle() entities.Vehicle {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return entities.Vehicle{
		ID:        "v-1",
		Make:      "Honda",
		Model:     "Civic",
		Year:      2021,
		VIN:       "2HGFC2F59MH000001",
		Color:     "Black",
		Status:    entities.VehicleStatusAvailable,
		Price:     decimal.RequireFromString("98500.50"),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func marshalVehicle(t *testing.T, v entities.Vehicle) map[string]types.AttributeValue {
	t.Helper()
	av, err := attributevalue.MarshalMap(toVehicleItem(v))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return av
}

func TestVehicleDynamoRepository_Create(t *testing.T) {
	t.Run("writes vehicle and vin marker together", func(t *testing.T) {
		fake := &fakeDynamo{}
		repo := NewVehicleDynamoRepository(fake, "vehicles")

		v := sampleVehicle()
		v.ID = ""
		got, err := repo.Create(context.Background(), v)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.ID == "" {
			t.Fatalf("expected generated id")
		}
		if fake.putInput != nil {
			t.Fatalf("expected a transaction, not a single put")
		}
		items := fake.transactInput.TransactItems
		if len(items) != 2 {
			t.Fatalf("expected 2 transact items, got %d", len(items))
		}

		vehicle := items[createVehicleWrite].Put
		if aws.ToString(vehicle.TableName) != "vehicles" || aws.ToString(vehicle.ConditionExpression) != "attribute_not_exists(#id)" {
			t.Fatalf("unexpected vehicle put: %+v", vehicle)
		}
		price, ok := vehicle.Item["price"].(*types.AttributeValueMemberS)
		if !ok || price.Value != "98500.5" {
			t.Fatalf("expected price stored as decimal string, got %#v", vehicle.Item["price"])
		}

		marker := items[createVINMarkerWrite].Put
		if aws.ToString(marker.ConditionExpression) != "attribute_not_exists(#id)" {
			t.Fatalf("expected marker condition")
		}
		id, _ := marker.Item["id"].(*types.AttributeValueMemberS)
		if id == nil || id.Value != "VIN#2HGFC2F59MH000001" {
			t.Fatalf("unexpected marker key %#v", marker.Item["id"])
		}
		if _, indexed := marker.Item["vin"]; indexed {
			t.Fatalf("marker must stay out of vin-index")
		}
		if _, indexed := marker.Item["status"]; indexed {
			t.Fatalf("marker must stay out of status-index")
		}
	})

	t.Run("taken vin is a duplicate", func(t *testing.T) {
		fake := &fakeDynamo{transactFn: func(*dynamodb.TransactWriteItemsInput) (*dynamodb.TransactWriteItemsOutput, error) {
			return nil, &types.TransactionCanceledException{
				Message: aws.String("Transaction cancelled"),
				CancellationReasons: []types.CancellationReason{
					{Code: aws.String("None")},
					{Code: aws.String("ConditionalCheckFailed")},
				},
			}
		}}
		repo := NewVehicleDynamoRepository(fake, "vehicles")

		_, err := repo.Create(context.Background(), sampleVehicle())
		if !errors.Is(err, usecase.ErrDuplicateVIN) {
			t.Fatalf("expected ErrDuplicateVIN, got %v", err)
		}
	})

	t.Run("other failures pass through", func(t *testing.T) {
		boom := errors.New("throttled")
		fake := &fakeDynamo{transactFn: func(*dynamodb.TransactWriteItemsInput) (*dynamodb.TransactWriteItemsOutput, error) {
			return nil, boom
		}}
		repo := NewVehicleDynamoRepository(fake, "vehicles")

		_, err := repo.Create(context.Background(), sampleVehicle())
		if !errors.Is(err, boom) || errors.Is(err, usecase.ErrDuplicateVIN) {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestVehicleDynamoRepository_IgnoresVINMarkers(t *testing.T) {
	fake := &fakeDynamo{}
	repo := NewVehicleDynamoRepository(fake, "vehicles")

	got, err := repo.GetByID(context.Background(), "VIN#2HGFC2F59MH000001")
	if err != nil || got.ID != "" {
		t.Fatalf("expected zero vehicle, got %+v, %v", got, err)
	}
	v := sampleVehicle()
	v.ID = "VIN#2HGFC2F59MH000001"
	got, err = repo.Update(context.Background(), v)
	if err != nil || got.ID != "" {
		t.Fatalf("expected zero vehicle, got %+v, %v", got, err)
	}
	if fake.getInput != nil || fake.updateInput != nil {
		t.Fatalf("marker ids must not reach the table")
	}
}

func TestVehicleDynamoRepository_GetByID(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		repo := NewVehicleDynamoRepository(&fakeDynamo{}, "vehicles")
		got, err := repo.GetByID(context.Background(), "missing")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.ID != "" {
			t.Fatalf("expected zero vehicle, got %+v", got)
		}
	})

	t.Run("found", func(t *testing.T) {
		want := sampleVehicle()
		fake := &fakeDynamo{getFn: func(*dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error) {
			return &dynamodb.GetItemOutput{Item: marshalVehicle(t, want)}, nil
		}}
		repo := NewVehicleDynamoRepository(fake, "vehicles")

		got, err := repo.GetByID(context.Background(), "v-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.ID != want.ID || got.VIN != want.VIN || !got.Price.Equal(want.Price) || !got.CreatedAt.Equal(want.CreatedAt) {
			t.Fatalf("unexpected vehicle: %+v", got)
		}
		if !aws.ToBool(fake.getInput.ConsistentRead) {
			t.Fatalf("expected consistent read")
		}
	})

	t.Run("corrupted price", func(t *testing.T) {
		bad := sampleVehicle()
		fake := &fakeDynamo{getFn: func(*dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error) {
			item := marshalVehicle(t, bad)
			item["price"] = &types.AttributeValueMemberS{Value: "abc"}
			return &dynamodb.GetItemOutput{Item: item}, nil
		}}
		repo := NewVehicleDynamoRepository(fake, "vehicles")

		if _, err := repo.GetByID(context.Background(), "v-1"); err == nil {
			t.Fatalf("expected decode error")
		}
	})
}

func TestVehicleDynamoRepository_GetByVIN(t *testing.T) {
	want := sampleVehicle()
	fake := &fakeDynamo{queryFn: func(*dynamodb.QueryInput) (*dynamodb.QueryOutput, error) {
		return &dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{marshalVehicle(t, want)}}, nil
	}}
	repo := NewVehicleDynamoRepository(fake, "vehicles")

	got, err := repo.GetByVIN(context.Background(), want.VIN)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "v-1" {
		t.Fatalf("unexpected vehicle: %+v", got)
	}
	if aws.ToString(fake.queryInputs[0].IndexName) != vehiclesVINIndex {
		t.Fatalf("expected vin index, got %q", aws.ToString(fake.queryInputs[0].IndexName))
	}
}

func TestVehicleDynamoRepository_ListByStatus_Paginates(t *testing.T) {
	first := sampleVehicle()
	second := sampleVehicle()
	second.ID = "v-2"
	second.VIN = "2HGFC2F59MH000002"
	second.Price = decimal.RequireFromString("41000")

	calls := 0
	fake := &fakeDynamo{queryFn: func(in *dynamodb.QueryInput) (*dynamodb.QueryOutput, error) {
		calls++
		if calls == 1 {
			return &dynamodb.QueryOutput{
				Items:            []map[string]types.AttributeValue{marshalVehicle(t, first)},
				LastEvaluatedKey: map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: "v-1"}},
			}, nil
		}
		if len(in.ExclusiveStartKey) == 0 {
			t.Fatalf("expected start key on second page")
		}
		return &dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{marshalVehicle(t, second)}}, nil
	}}
	repo := NewVehicleDynamoRepository(fake, "vehicles")

	got, err := repo.ListByStatus(context.Background(), entities.VehicleStatusAvailable)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || calls != 2 {
		t.Fatalf("expected 2 vehicles over 2 pages, got %d over %d", len(got), calls)
	}
	if aws.ToString(fake.queryInputs[0].IndexName) != vehiclesStatusIndex {
		t.Fatalf("expected status index")
	}
	if got[0].ID != "v-2" || got[1].ID != "v-1" {
		t.Fatalf("expected cheapest vehicle first, got %s then %s", got[0].ID, got[1].ID)
	}
}

func TestVehicleDynamoRepository_Update(t *testing.T) {
	t.Run("missing vehicle", func(t *testing.T) {
		fake := &fakeDynamo{updateFn: func(*dynamodb.UpdateItemInput) (*dynamodb.UpdateItemOutput, error) {
			return nil, &types.ConditionalCheckFailedException{Message: aws.String("conditional check failed")}
		}}
		repo := NewVehicleDynamoRepository(fake, "vehicles")

		got, err := repo.Update(context.Background(), sampleVehicle())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.ID != "" {
			t.Fatalf("expected zero vehicle")
		}
	})

	t.Run("does not write vin or status", func(t *testing.T) {
		v := sampleVehicle()
		fake := &fakeDynamo{updateFn: func(*dynamodb.UpdateItemInput) (*dynamodb.UpdateItemOutput, error) {
			return &dynamodb.UpdateItemOutput{Attributes: marshalVehicle(t, v)}, nil
		}}
		repo := NewVehicleDynamoRepository(fake, "vehicles")

		if _, err := repo.Update(context.Background(), v); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, forbidden := range []string{":vin", ":status"} {
			if _, ok := fake.updateInput.ExpressionAttributeValues[forbidden]; ok {
				t.Fatalf("update must not set %s", forbidden)
			}
		}
	})

	t.Run("client error", func(t *testing.T) {
		fake := &fakeDynamo{updateFn: func(*dynamodb.UpdateItemInput) (*dynamodb.UpdateItemOutput, error) {
			return nil, errors.New("throttled")
		}}
		repo := NewVehicleDynamoRepository(fake, "vehicles")

		if _, err := repo.Update(context.Background(), sampleVehicle()); err == nil || err.Error() != "throttled" {
			t.Fatalf("expected throttled error, got %v", err)
		}
	})
}
