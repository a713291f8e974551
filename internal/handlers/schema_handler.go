package handlers

import (
	"net/http"
	"reflect"
	"strings"

	"ev-dealer-hub/internal/access"
	"ev-dealer-hub/internal/dealership"
	"ev-dealer-hub/internal/middleware"
	"ev-dealer-hub/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/invopop/jsonschema"
	"github.com/shopspring/decimal"
)

// prototypes are the records described by /api/schemas/:resource.
var prototypes = map[access.Resource]any{
	access.Users:        models.User{},
	access.Dealers:      models.Dealer{},
	access.VehicleTypes: models.VehicleType{},
	access.Vehicles:     models.Vehicle{},
	access.Inventory:    models.Inventory{},
	access.Customers:    models.Customer{},
	access.Orders:       models.Order{},
	access.DealerOrders: models.DealerOrder{},
	access.Debts:        models.Debt{},
	access.Promotions:   models.Promotion{},
	access.Pricing:      models.Pricing{},
	access.TestDrives:   models.TestDrive{},
	access.Feedbacks:    models.Feedback{},
	access.Settings:     models.Settings{},
}

var decimalType = reflect.TypeOf(decimal.Decimal{})

var reflector = &jsonschema.Reflector{
	AllowAdditionalProperties: false,
	DoNotReference:            true,
	Mapper: func(t reflect.Type) *jsonschema.Schema {
		if t == decimalType {
			return &jsonschema.Schema{Type: "string", Format: "decimal"}
		}
		return nil
	},
}

// --- GET: /api/schemas/:resource ---
// The SPA builds its forms from this: required fields and options come from
// the record form, fields the form does not accept are read-only.
func (s *Server) GetSchema(c *gin.Context) {
	res := access.Resource(strings.ReplaceAll(c.Param("resource"), "-", "_"))
	proto, ok := prototypes[res]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown resource"})
		return
	}
	if !access.Can(middleware.CurrentSession(c).Role, res, access.Read) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to access this resource"})
		return
	}
	c.JSON(http.StatusOK, describe(res, proto))
}

func describe(res access.Resource, proto any) *jsonschema.Schema {
	schema := reflector.Reflect(proto)
	fields := dealership.Schemas[res]
	schema.Title = fields.Entity
	schema.Required = nil

	editable := map[string]bool{}
	for _, f := range fields.Fields {
		editable[f.Name] = true
		prop, ok := schema.Properties.Get(f.Name)
		if !ok {
			// write-only inputs such as a user's password
			prop = &jsonschema.Schema{Type: "string", WriteOnly: true}
			schema.Properties.Set(f.Name, prop)
		}
		if f.Required {
			schema.Required = append(schema.Required, f.Name)
		}
		if len(f.Options) > 0 {
			prop.Enum = make([]any, 0, len(f.Options))
			for _, o := range f.Options {
				prop.Enum = append(prop.Enum, o)
			}
		}
	}
	for pair := schema.Properties.Oldest(); pair != nil; pair = pair.Next() {
		if !editable[pair.Key] {
			pair.Value.ReadOnly = true
		}
	}
	return schema
}
