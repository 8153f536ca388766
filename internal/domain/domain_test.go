package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveCondition(t *testing.T) {
	tests := []struct {
		name    string
		product Product
		want    Condition
	}{
		{
			name:    "first marker wins",
			product: Product{NameEN: "[Used][New] Servo Driver"},
			want:    ConditionUsed,
		},
		{
			name:    "new before refurbished",
			product: Product{NameEN: "Refurbished NEW panel"},
			want:    ConditionNew,
		},
		{
			name:    "korean marker",
			product: Product{NameKR: "[신품] 서보 드라이버"},
			want:    ConditionNew,
		},
		{
			name:    "korean refurbished marker",
			product: Product{NameKR: "재생 인버터"},
			want:    ConditionRefurbished,
		},
		{
			name:    "english marker needs a whole word",
			product: Product{NameEN: "Newton sensor unused stock"},
			want:    ConditionUsed,
		},
		{
			name:    "specification fallback",
			product: Product{NameEN: "Servo Driver", Specifications: `{"Condition": "Refurbished unit"}`},
			want:    ConditionRefurbished,
		},
		{
			name:    "lowercase specification key",
			product: Product{NameEN: "Servo Driver", Specifications: `{"condition": "new"}`},
			want:    ConditionNew,
		},
		{
			name:    "unrecognised specification value",
			product: Product{NameEN: "Servo Driver", Specifications: `{"Condition": "A-Level"}`},
			want:    ConditionUsed,
		},
		{
			name:    "malformed specifications",
			product: Product{NameEN: "Servo Driver", Specifications: `{"Condition": `},
			want:    ConditionUsed,
		},
		{
			name:    "nothing at all",
			product: Product{},
			want:    ConditionUsed,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DeriveCondition(tc.product))
		})
	}
}

func TestParseSpecifications(t *testing.T) {
	specs := ParseSpecifications(`{"MAKER": "MITSUBISHI", "Axes": 3, "Sealed": true, "Extra": null}`)
	assert.Equal(t, map[string]string{
		"MAKER":  "MITSUBISHI",
		"Axes":   "3",
		"Sealed": "true",
		"Extra":  "",
	}, specs)

	assert.Empty(t, ParseSpecifications(""))
	assert.Empty(t, ParseSpecifications("not json"))
	assert.Empty(t, ParseSpecifications(`["a", "b"]`))
}

func TestProductDisplayName(t *testing.T) {
	p := Product{NameEN: "Touch Panel", NameKR: "터치 패널"}
	assert.Equal(t, "Touch Panel", p.DisplayName(LanguageEN))
	assert.Equal(t, "터치 패널", p.DisplayName(LanguageKR))

	assert.Equal(t, "Touch Panel", Product{NameEN: "Touch Panel"}.DisplayName(LanguageKR))
	assert.Equal(t, "터치 패널", Product{NameKR: "터치 패널"}.DisplayName(LanguageEN))
	assert.Equal(t, "Unknown Product", Product{}.DisplayName(LanguageEN))
}

func TestParseLanguage(t *testing.T) {
	tests := []struct {
		code string
		want Language
		ok   bool
	}{
		{code: "", want: LanguageEN, ok: true},
		{code: "en", want: LanguageEN, ok: true},
		{code: " KR ", want: LanguageKR, ok: true},
		{code: "ko", want: LanguageKR, ok: true},
		{code: "jp", ok: false},
	}

	for _, tt := range tests {
		got, ok := ParseLanguage(tt.code)
		assert.Equal(t, tt.ok, ok, tt.code)
		assert.Equal(t, tt.want, got, tt.code)
	}
}

func TestCategoryDisplayName(t *testing.T) {
	node := &CategoryNode{Name: "Servo", NameKR: "서보"}
	assert.Equal(t, "Servo", node.DisplayName(LanguageEN))
	assert.Equal(t, "서보", node.DisplayName(LanguageKR))
	assert.Equal(t, "PLC", (&CategoryNode{Name: "PLC"}).DisplayName(LanguageKR))
}

func TestProductPriceLabel(t *testing.T) {
	assert.Equal(t, "€12.50", Product{PriceEURMarkup: 12.5}.PriceLabel())
	assert.Equal(t, "Contact for Price", Product{}.PriceLabel())
}

func TestProductScrapedTime(t *testing.T) {
	assert.Equal(t, time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC),
		Product{ScrapedAt: "2024-03-01 10:30:00"}.ScrapedTime())
	assert.Equal(t, time.Date(2024, 3, 1, 10, 30, 0, 500000000, time.UTC),
		Product{ScrapedAt: "2024-03-01T10:30:00.5"}.ScrapedTime())
	assert.True(t, Product{ScrapedAt: "yesterday"}.ScrapedTime().IsZero())
}

func TestStringListUnmarshal(t *testing.T) {
	var p struct {
		A StringList `json:"a"`
		B StringList `json:"b"`
		C StringList `json:"c"`
	}
	err := json.Unmarshal([]byte(`{"a": ["x.jpg", "", "y.jpg"], "b": "x.jpg, y.jpg", "c": null}`), &p)
	require.NoError(t, err)

	assert.Equal(t, StringList{"x.jpg", "y.jpg"}, p.A)
	assert.Equal(t, StringList{"x.jpg", "y.jpg"}, p.B)
	assert.Nil(t, p.C)
}

func TestProductUnmarshalIsLenient(t *testing.T) {
	tests := []struct {
		name string
		data string
		want Product
	}{
		{
			name: "well typed",
			data: `{"id": "1", "name_en": "CPU", "price_eur_markup": 12.5, "images": ["a.jpg"], "specifications": "{\"MAKER\": \"OMRON\"}"}`,
			want: Product{ID: "1", NameEN: "CPU", PriceEURMarkup: 12.5, Images: StringList{"a.jpg"}, Specifications: `{"MAKER": "OMRON"}`},
		},
		{
			name: "numbers as text",
			data: `{"id": 7, "model_number": 12345, "manufacturer": true}`,
			want: Product{ID: "7", ModelNumber: "12345", Manufacturer: "true"},
		},
		{
			name: "object specifications are kept as json",
			data: `{"id": "1", "specifications": {"MAKER": "X", "Size": [1, 2]}}`,
			want: Product{ID: "1", Specifications: `{"MAKER":"X","Size":[1,2]}`},
		},
		{
			name: "price strings",
			data: `{"id": "1", "price_eur_markup": "€1,200.50"}`,
			want: Product{ID: "1", PriceEURMarkup: 1200.5},
		},
		{
			name: "unreadable price means contact for price",
			data: `{"id": "1", "price_eur_markup": "ask"}`,
			want: Product{ID: "1"},
		},
		{
			name: "negative price",
			data: `{"id": "1", "price_eur_markup": -3}`,
			want: Product{ID: "1"},
		},
		{
			name: "nulls and odd images",
			data: `{"id": "1", "name_en": null, "price_eur_markup": null, "images": 5}`,
			want: Product{ID: "1"},
		},
		{
			name: "mixed image list",
			data: `{"id": "1", "images": ["a.jpg", 3, null]}`,
			want: Product{ID: "1", Images: StringList{"a.jpg", "3"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Product
			require.NoError(t, json.Unmarshal([]byte(tt.data), &got))
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.PriceLabel(), got.PriceLabel())
		})
	}
}

func TestProductUnmarshalRejectsNonObjects(t *testing.T) {
	var p Product
	assert.Error(t, json.Unmarshal([]byte(`"not a product"`), &p))
}

func TestCategoryNodeValidate(t *testing.T) {
	root := NewRootCategory()
	sub := root.EnsureChild("PLC", "").EnsureChild("MELSEC", "")
	sub.EnsureChild("Q Series", "")
	require.NoError(t, root.Validate())

	node, ok := root.Find(CategoryPath{"PLC", "MELSEC", "Q Series"})
	require.True(t, ok)
	assert.Equal(t, "Q Series", node.Name)

	_, ok = root.Find(CategoryPath{"PLC", "Missing"})
	assert.False(t, ok)

	tooDeep := NewRootCategory()
	tooDeep.EnsureChild("a", "").EnsureChild("b", "").EnsureChild("c", "").EnsureChild("d", "")
	assert.Error(t, tooDeep.Validate())

	mismatched := NewRootCategory()
	mismatched.Children["PLC"] = &CategoryNode{Name: "HMI"}
	assert.Error(t, mismatched.Validate())

	var missing *CategoryNode
	assert.Error(t, missing.Validate())
}

func TestCategoryPath(t *testing.T) {
	assert.Equal(t, LevelSub, CategoryPath{"PLC", "MELSEC"}.Level())
	assert.Equal(t, "MELSEC", CategoryPath{"PLC", "MELSEC"}.Leaf())
	assert.Equal(t, CategoryLevel(""), CategoryPath{}.Level())
	assert.Equal(t, "", CategoryPath{}.Leaf())
}
