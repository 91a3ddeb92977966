package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"pairup_server/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeDynamo is an in-memory DynamoAPI good enough for the expressions this
// codebase issues: keyed get/put, put-if-absent, guarded SET updates, and
// unfiltered scans. Conditions are evaluated under one lock, which is the
// property the real store provides per item.
type fakeDynamo struct {
	mu     sync.Mutex
	tables map[string]map[string]map[string]types.AttributeValue

	// afterPut, when set, runs after a successful put, outside the lock.
	// Tests use it to interleave an operation at an exact write.
	afterPut func(table string)
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{tables: map[string]map[string]map[string]types.AttributeValue{}}
}

func keyAttributeFor(table string) string {
	if table == models.UserProfilesTable {
		return "userId"
	}
	return "id"
}

func (f *fakeDynamo) table(name string) map[string]map[string]types.AttributeValue {
	t, ok := f.tables[name]
	if !ok {
		t = map[string]map[string]types.AttributeValue{}
		f.tables[name] = t
	}
	return t
}

func stringAttr(item map[string]types.AttributeValue, name string) (string, bool) {
	v, ok := item[name].(*types.AttributeValueMemberS)
	if !ok {
		return "", false
	}
	return v.Value, true
}

func copyItem(item map[string]types.AttributeValue) map[string]types.AttributeValue {
	out := make(map[string]types.AttributeValue, len(item))
	for k, v := range item {
		out[k] = v
	}
	return out
}

func (f *fakeDynamo) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	keyAttr := keyAttributeFor(*params.TableName)
	id, ok := stringAttr(params.Key, keyAttr)
	if !ok {
		return nil, fmt.Errorf("fake: missing key attribute %s", keyAttr)
	}

	item, ok := f.table(*params.TableName)[id]
	if !ok {
		return &dynamodb.GetItemOutput{}, nil
	}
	return &dynamodb.GetItemOutput{Item: copyItem(item)}, nil
}

func (f *fakeDynamo) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()

	keyAttr := keyAttributeFor(*params.TableName)
	id, ok := stringAttr(params.Item, keyAttr)
	if !ok {
		f.mu.Unlock()
		return nil, fmt.Errorf("fake: item missing key attribute %s", keyAttr)
	}

	table := f.table(*params.TableName)
	if params.ConditionExpression != nil {
		// The only put condition issued is attribute_not_exists on the key.
		if _, exists := table[id]; exists {
			f.mu.Unlock()
			return nil, &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
		}
	}

	table[id] = copyItem(params.Item)
	hook := f.afterPut
	f.mu.Unlock()

	if hook != nil {
		hook(*params.TableName)
	}
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	keyAttr := keyAttributeFor(*params.TableName)
	id, ok := stringAttr(params.Key, keyAttr)
	if !ok {
		return nil, fmt.Errorf("fake: missing key attribute %s", keyAttr)
	}

	table := f.table(*params.TableName)
	item, exists := table[id]
	if !exists {
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
	}

	if params.ConditionExpression != nil {
		if !evalCondition(*params.ConditionExpression, item, params.ExpressionAttributeNames, params.ExpressionAttributeValues) {
			return nil, &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
		}
	}

	updated := copyItem(item)
	if err := applySet(*params.UpdateExpression, updated, params.ExpressionAttributeNames, params.ExpressionAttributeValues); err != nil {
		return nil, err
	}
	table[id] = updated

	return &dynamodb.UpdateItemOutput{Attributes: copyItem(updated)}, nil
}

func (f *fakeDynamo) Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var items []map[string]types.AttributeValue
	for _, item := range f.table(*params.TableName) {
		items = append(items, copyItem(item))
	}
	return &dynamodb.ScanOutput{Items: items}, nil
}

// evalCondition handles the two condition forms this codebase uses,
// optionally joined by AND: "#name = :value" and "attribute_not_exists(#name)".
func evalCondition(expr string, item map[string]types.AttributeValue, names map[string]string, values map[string]types.AttributeValue) bool {
	for _, clause := range strings.Split(expr, " AND ") {
		clause = strings.TrimSpace(clause)
		switch {
		case strings.HasPrefix(clause, "attribute_not_exists(") && strings.HasSuffix(clause, ")"):
			placeholder := strings.TrimSuffix(strings.TrimPrefix(clause, "attribute_not_exists("), ")")
			if _, present := item[resolveName(placeholder, names)]; present {
				return false
			}
		case strings.Contains(clause, " = "):
			parts := strings.SplitN(clause, " = ", 2)
			attr := resolveName(strings.TrimSpace(parts[0]), names)
			want, ok := values[strings.TrimSpace(parts[1])].(*types.AttributeValueMemberS)
			if !ok {
				return false
			}
			got, ok := item[attr].(*types.AttributeValueMemberS)
			if !ok || got.Value != want.Value {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// applySet handles "SET #a = :a, #b = :b" update expressions.
func applySet(expr string, item map[string]types.AttributeValue, names map[string]string, values map[string]types.AttributeValue) error {
	if !strings.HasPrefix(expr, "SET ") {
		return fmt.Errorf("fake: unsupported update expression %q", expr)
	}
	for _, assignment := range strings.Split(strings.TrimPrefix(expr, "SET "), ",") {
		parts := strings.SplitN(assignment, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("fake: unsupported assignment %q", assignment)
		}
		attr := resolveName(strings.TrimSpace(parts[0]), names)
		value, ok := values[strings.TrimSpace(parts[1])]
		if !ok {
			return fmt.Errorf("fake: missing value for %q", assignment)
		}
		item[attr] = value
	}
	return nil
}

func resolveName(placeholder string, names map[string]string) string {
	if resolved, ok := names[placeholder]; ok {
		return resolved
	}
	return placeholder
}
