package ddb

import (
	"fmt"
	"time"

	"pokedex-backend/internal/domain"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Single-table layout. A record lives under POKEMON#<id>; each unique field has
// a guard item whose PK is derived from the field value, so uniqueness falls
// out of attribute_not_exists(PK) conditions inside one transaction.
const (
	entityPokemon = "POKEMON"
	entityGuard   = "POKEMON_GUARD"

	recordPrefix = "POKEMON#"
	namePrefix   = "POKEMON_NAME#"
	noPrefix     = "POKEMON_NO#"

	metadataSK = "METADATA"
	uniqueSK   = "UNIQUE"

	// Every key this adapter writes starts with this prefix.
	tablePrefix = "POKEMON"
)

func recordPK(id string) string  { return recordPrefix + id }
func namePK(name string) string { return namePrefix + name }
func noPK(no int) string        { return fmt.Sprintf("%s%d", noPrefix, no) }

func key(pk, sk string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: pk},
		"SK": &types.AttributeValueMemberS{Value: sk},
	}
}

// ddbPokemon represents the structure of a record item in DynamoDB.
type ddbPokemon struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`
	ID         string `dynamodbav:"ID"`
	Name       string `dynamodbav:"Name"`
	No         int    `dynamodbav:"No"`
	ImageURL   string `dynamodbav:"ImageURL,omitempty"`
	CreatedAt  string `dynamodbav:"CreatedAt"`
	UpdatedAt  string `dynamodbav:"UpdatedAt"`
}

// ddbGuard represents a uniqueness guard item in DynamoDB.
type ddbGuard struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`
	Field      string `dynamodbav:"Field"`
	OwnerID    string `dynamodbav:"OwnerID"`
}

func toItem(p domain.Pokemon) ddbPokemon {
	return ddbPokemon{
		PK:         recordPK(p.ID),
		SK:         metadataSK,
		EntityType: entityPokemon,
		ID:         p.ID,
		Name:       p.Name,
		No:         p.No,
		ImageURL:   p.ImageURL,
		CreatedAt:  p.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:  p.UpdatedAt.Format(time.RFC3339Nano),
	}
}

func (item ddbPokemon) toDomain() domain.Pokemon {
	createdAt, _ := time.Parse(time.RFC3339Nano, item.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339Nano, item.UpdatedAt)
	return domain.Pokemon{
		ID:        item.ID,
		Name:      item.Name,
		No:        item.No,
		ImageURL:  item.ImageURL,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

func nameGuard(p domain.Pokemon) ddbGuard {
	return ddbGuard{PK: namePK(p.Name), SK: uniqueSK, EntityType: entityGuard, Field: "name", OwnerID: p.ID}
}

func noGuard(p domain.Pokemon) ddbGuard {
	return ddbGuard{PK: noPK(p.No), SK: uniqueSK, EntityType: entityGuard, Field: "no", OwnerID: p.ID}
}
