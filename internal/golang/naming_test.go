package golang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNameConversions(t *testing.T) {
	tests := []struct {
		input  string
		pascal string
		camel  string
		snake  string
	}{
		{"", "", "", ""},
		{"a", "A", "a", "a"},
		{"A", "A", "a", "a"},
		{"ABC", "Abc", "abc", "abc"},
		{"hello_world", "HelloWorld", "helloWorld", "hello_world"},
		{"hello-world", "HelloWorld", "helloWorld", "hello_world"},
		{"hello world", "HelloWorld", "helloWorld", "hello_world"},
		{"helloWorld", "HelloWorld", "helloWorld", "hello_world"},
		{"HelloWorld", "HelloWorld", "helloWorld", "hello_world"},
		{"api_key", "APIKey", "apiKey", "api_key"},
		{"APIKey", "Apikey", "apikey", "apikey"},
		{"user_id", "UserID", "userID", "user_id"},
		{"userID", "UserID", "userID", "user_id"},
		{"UserId", "UserID", "userID", "user_id"},
		{"petId", "PetID", "petID", "pet_id"},
		{"http_url", "HTTPURL", "httpURL", "http_url"},
		{"get_pets_by_id", "GetPetsByID", "getPetsByID", "get_pets_by_id"},
		{"list_api_keys", "ListAPIKeys", "listAPIKeys", "list_api_keys"},
		{"card_cvv", "CardCVV", "cardCVV", "card_cvv"},
		{"uuid", "UUID", "uuid", "uuid"},
		{"v2Items", "V2Items", "v2Items", "v2_items"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.pascal, PascalCase(tt.input), "PascalCase")
			assert.Equal(t, tt.camel, CamelCase(tt.input), "CamelCase")
			assert.Equal(t, tt.snake, SnakeCase(tt.input), "SnakeCase")
		})
	}
}

func TestToGoIdentifier(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"hello_world", "HelloWorld"},
		{"123abc", "X123abc"},
		{"1", "X1"},
		{"", "X"},
		{"---", "X"},
		{"api_key", "APIKey"},
		{"user-name", "UserName"},
		{"/pets/{petId}", "PetsPetID"},
		{"application/json+v2", "ApplicationJSONV2"},
		{"Ünïcode name", "ÜnïcodeName"},
		{"2fa-code", "X2faCode"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			require.Equal(t, tt.expected, ToGoIdentifier(tt.input))
		})
	}
}

func TestEscapeKeyword(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"type", "type_"},
		{"Type", "Type_"},
		{"package", "package_"},
		{"return", "return_"},
		{"range", "range_"},
		{"name", "name"},
		{"petID", "petID"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			require.Equal(t, tt.expected, EscapeKeyword(tt.input))
		})
	}
}

func TestSetAdditionalInitialisms(t *testing.T) {
	require.Equal(t, "SkuCode", PascalCase("sku_code"))

	SetAdditionalInitialisms([]string{"sku"})
	t.Cleanup(func() { delete(initialisms, "SKU") })

	assert.Equal(t, "SKUCode", PascalCase("sku_code"))
	assert.Equal(t, "skuCode", CamelCase("sku_code"))
}
