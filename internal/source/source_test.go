package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"laonlink/storefront/internal/domain"

	"github.com/lithammer/dedent"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bundle = dedent.Dedent(`
	// LaonLink product data
	// Generated: 2025-06-01 10:00:00

	const productsData = [
	  {"id": "1", "name_en": "[Used] MELSEC Q CPU", "category_main_en": "PLC", "category_sub_en": "MELSEC", "price_eur_markup": 120.5, "images": "a.jpg,b.jpg"},
	  {"id": "2", "name_en": "Servo Amp", "category_main_en": "Servo", "price_eur_markup": 0, "images": []}
	];

	const categoriesData = {
	  "PLC": {"name_en": "PLC", "name_kr": "피엘씨", "subcategories": {"MELSEC": {"name_kr": "멜섹"}}},
	  "Servo": {"name_en": "Servo", "subcategories": {}}
	};

	const manufacturersData = ["MITSUBISHI"];

	if (typeof module !== 'undefined' && module.exports) {
	    module.exports = { productsData, categoriesData, manufacturersData };
	}
`)

func TestDecodeBundle(t *testing.T) {
	payload, err := Decode([]byte(bundle))
	require.NoError(t, err)

	require.Len(t, payload.Products, 2)
	assert.Equal(t, "1", payload.Products[0].ID)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, []string(payload.Products[0].Images))
	assert.Empty(t, payload.Products[1].Images)

	require.NotNil(t, payload.Categories)
	assert.Equal(t, []string{"PLC", "Servo"}, payload.Categories.ChildNames())

	melsec, ok := payload.Categories.Find([]string{"PLC", "MELSEC"})
	require.True(t, ok)
	assert.Equal(t, "MELSEC", melsec.Name)
	assert.Equal(t, "멜섹", melsec.NameKR)
	assert.NoError(t, payload.Categories.Validate())
}

func TestDecodeFormats(t *testing.T) {
	tests := []struct {
		name           string
		data           string
		wantProducts   int
		wantCategories bool
	}{
		{
			name:         "bare array",
			data:         `[{"id":"1"},{"id":"2"},{"id":"3"}]`,
			wantProducts: 3,
		},
		{
			name:           "document",
			data:           `{"products":[{"id":"1"}],"categories":{"PLC":{"name_en":"PLC"}}}`,
			wantProducts:   1,
			wantCategories: true,
		},
		{
			name:         "document without categories",
			data:         `{"products":[{"id":"1"}]}`,
			wantProducts: 1,
		},
		{
			name:         "byte order mark",
			data:         "\ufeff  [{\"id\":\"1\"}]",
			wantProducts: 1,
		},
		{
			name:         "bundle without categories",
			data:         "const productsData = [{\"id\":\"9\"}];\n",
			wantProducts: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := Decode([]byte(tt.data))
			require.NoError(t, err)
			assert.Len(t, payload.Products, tt.wantProducts)
			assert.Equal(t, tt.wantCategories, payload.Categories != nil)
		})
	}
}

func TestDecodeBundleWithDelimitersInStrings(t *testing.T) {
	data := dedent.Dedent(`
		const productsData = [
		  {"id": "1", "specifications": "{\"Voltage\": \"[AC220V]; 60Hz\"}"},
		  {"id": "2", "name_en": "Panel }; const categoriesData = {}"}
		];
		const categoriesData = {"PLC": {"name_en": "PLC", "subcategories": {"A}; B": {}}}};
	`)

	payload, err := Decode([]byte(data))
	require.NoError(t, err)

	require.Len(t, payload.Products, 2)
	assert.Equal(t, "[AC220V]; 60Hz", payload.Products[0].Specs()["Voltage"])
	assert.Equal(t, "Panel }; const categoriesData = {}", payload.Products[1].NameEN)

	require.NotNil(t, payload.Categories)
	_, ok := payload.Categories.Find([]string{"PLC", "A}; B"})
	assert.True(t, ok)
}

func TestDecodeToleratesBadlyTypedFields(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		wantModel string
		wantPrice float64
		wantSpecs map[string]string
	}{
		{
			name:      "object specifications",
			data:      `[{"id": "A", "specifications": {"MAKER": "X", "Weight": 2}}]`,
			wantSpecs: map[string]string{"MAKER": "X", "Weight": "2"},
		},
		{
			name:      "numeric model number",
			data:      `[{"id": "A", "model_number": 12345}]`,
			wantModel: "12345",
			wantSpecs: map[string]string{},
		},
		{
			name:      "price as text",
			data:      `[{"id": "A", "price_eur_markup": "100"}]`,
			wantPrice: 100,
			wantSpecs: map[string]string{},
		},
		{
			name:      "unreadable price",
			data:      `[{"id": "A", "price_eur_markup": "call us"}]`,
			wantSpecs: map[string]string{},
		},
		{
			name:      "bundle with object specifications",
			data:      `const productsData = [{"id": "A", "specifications": {"MAKER": "X"}, "price_eur_markup": true}];`,
			wantSpecs: map[string]string{"MAKER": "X"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := Decode([]byte(tt.data))
			require.NoError(t, err)
			require.Len(t, payload.Products, 1)

			p := payload.Products[0]
			assert.Equal(t, "A", p.ID)
			assert.Equal(t, tt.wantModel, p.ModelNumber)
			assert.Equal(t, tt.wantPrice, p.PriceEURMarkup)
			assert.Equal(t, tt.wantSpecs, p.Specs())
		})
	}
}

func TestDecodeRejectsMalformedInput(t *testing.T) {
	for _, data := range []string{
		"",
		"   ",
		`[{"id":`,
		`{"products": 12}`,
		`var somethingElse = 1;`,
		`const productsData = [{"id":}];`,
	} {
		_, err := Decode([]byte(data))
		assert.Error(t, err, "input %q", data)
	}
}

func TestRepairSpecifications(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "shifted pairs",
			raw:  `{"MAKER": "Classification", "MITSUBISHI": "PLC", "Condition": "SERIAL", "A-Level": "12345"}`,
			want: `{"MAKER": "MITSUBISHI", "Classification": "PLC", "Condition": "A-Level", "SERIAL": "12345"}`,
		},
		{
			name: "odd trailing pair is kept",
			raw:  `{"MAKER": "Classification", "OMRON": "Relay", "Note": "boxed"}`,
			want: `{"MAKER": "OMRON", "Classification": "Relay", "Note": "boxed"}`,
		},
		{
			name: "without maker",
			raw:  `{"Voltage": "24V", "Phase": "3"}`,
			want: `{"Voltage": "24V", "Phase": "3"}`,
		},
		{
			name: "empty object",
			raw:  `{}`,
			want: `{}`,
		},
		{
			name: "not json",
			raw:  `MAKER: OMRON`,
			want: `MAKER: OMRON`,
		},
		{
			name: "blank",
			raw:  ``,
			want: ``,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RepairSpecifications(tt.raw))
		})
	}
}

func TestPrepare(t *testing.T) {
	payload, err := Decode([]byte(`[
		{"id":"1","category_main_en":"PLC","category_sub_en":"MELSEC","specifications":"{\"MAKER\": \"Classification\", \"MITSUBISHI\": \"PLC\"}"},
		{"id":"2","category_main_en":"Servo"}
	]`))
	require.NoError(t, err)

	prepared := Prepare(payload, PrepareOptions{RepairSpecifications: true})
	assert.Equal(t, `{"MAKER": "MITSUBISHI", "Classification": "PLC"}`, prepared.Products[0].Specifications)
	assert.Equal(t, "MITSUBISHI", prepared.Products[0].Specs()["MAKER"])

	require.NotNil(t, prepared.Categories)
	_, ok := prepared.Categories.Find([]string{"PLC", "MELSEC"})
	assert.True(t, ok)
	assert.Equal(t, []string{"PLC", "Servo"}, prepared.Categories.ChildNames())

	assert.Nil(t, Prepare(nil, PrepareOptions{RepairSpecifications: true}))
}

func TestPrepareKeepsSpecificationsByDefault(t *testing.T) {
	raw := `{"MAKER": "Classification", "MITSUBISHI": "PLC"}`
	payload, err := Decode([]byte(`[{"id":"1","specifications":` + quoteJSON(raw) + `}]`))
	require.NoError(t, err)

	assert.Equal(t, raw, Prepare(payload, PrepareOptions{}).Products[0].Specifications)
}

func TestTranslateSpecifications(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "keys and values",
			raw:  `{"출력": "400W", "사용전압": "AC220V", "Condition": "중고 양호"}`,
			want: `{"Output": "400W", "Voltage": "AC220V", "Condition": "Used Good"}`,
		},
		{
			name: "longer phrases first",
			raw:  `{"Classification": "AC모터,기어드모터 감속기"}`,
			want: `{"Classification": "AC Motor, Geared Motor Reducer"}`,
		},
		{
			name: "korean maker keeps its name",
			raw:  `{"MAKER": "미쓰비시", "모터": "있음"}`,
			want: `{"MAKER": "미쓰비시 (Mitsubishi)", "Motor": "Yes"}`,
		},
		{
			name: "unknown korean maker",
			raw:  `{"MAKER": "삼성"}`,
			want: `{"MAKER": "삼성"}`,
		},
		{
			name: "non string values are kept",
			raw:  `{"출력(KW)": 1.5, "브레이크": true}`,
			want: `{"Output (KW)": 1.5, "Brake": true}`,
		},
		{
			name: "english blob is untouched",
			raw:  `{"MAKER":"OMRON","Voltage":"24V"}`,
			want: `{"MAKER":"OMRON","Voltage":"24V"}`,
		},
		{name: "empty", raw: "", want: ""},
		{name: "unparseable", raw: `{"출력": `, want: `{"출력": `},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TranslateSpecifications(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, TranslateSpecifications(got), "translating twice changes nothing")
		})
	}
}

func TestPrepareTranslatesAfterRepair(t *testing.T) {
	raw := `{"MAKER": "Classification", "미쓰비시": "인버터"}`
	payload, err := Decode([]byte(`[{"id":"1","specifications":` + quoteJSON(raw) + `}]`))
	require.NoError(t, err)

	prepared := Prepare(payload, PrepareOptions{RepairSpecifications: true, TranslateSpecifications: true})
	assert.Equal(t, `{"MAKER": "미쓰비시 (Mitsubishi)", "Classification": "Inverter"}`, prepared.Products[0].Specifications)
}

func TestFileSource(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "data/products-data.js", []byte(bundle), 0o644))

	payload, err := NewFileSource(fs, "data/products-data.js").Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, payload.Products, 2)

	_, err = NewFileSource(fs, "data/missing.json").Load(context.Background())
	assert.ErrorContains(t, err, "failed to read catalog file")
}

func TestHTTPSource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/catalog.json":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"products":[{"id":"1"},{"id":"2"}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	payload, err := NewHTTPSource(server.URL+"/catalog.json", 5*time.Second, 0).Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, payload.Products, 2)

	_, err = NewHTTPSource(server.URL+"/missing.json", 5*time.Second, 0).Load(context.Background())
	assert.ErrorContains(t, err, "HTTP 404")
}

func quoteJSON(s string) string {
	return string(quote(s))
}

type listRepository struct {
	products []domain.Product
	err      error
}

func (r *listRepository) EnsureSchema(context.Context) error { return nil }

func (r *listRepository) SaveProducts(context.Context, []domain.Product) error { return nil }

func (r *listRepository) ListProducts(context.Context) ([]domain.Product, error) {
	return r.products, r.err
}

func TestPostgresSource(t *testing.T) {
	repo := &listRepository{products: []domain.Product{{ID: "1"}, {ID: "2"}}}

	payload, err := NewPostgresSource(repo).Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, payload.Products, 2)
	assert.Nil(t, payload.Categories, "the tree is derived from products")

	repo.err = errors.New("connection reset")
	_, err = NewPostgresSource(repo).Load(context.Background())
	assert.ErrorContains(t, err, "connection reset")
}
