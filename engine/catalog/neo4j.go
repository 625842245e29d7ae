package catalog

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/WessleyAI/car-explorer/pkg/repo"
)

// NodeLabel is the label of catalog nodes in the graph.
const NodeLabel = "Car"

// GraphRepo is the repository view of :Car nodes.
type GraphRepo interface {
	repo.Reader[Car, int]
	repo.Writer[Car]
}

// NewGraphRepo returns a repository over :Car nodes whose properties use the
// record's JSON names.
func NewGraphRepo(driver neo4j.DriverWithContext) GraphRepo {
	return repo.NewNeo4jRepo[Car, int](driver, NodeLabel, carToProps, carFromRecord)
}

// Neo4jSource loads every :Car node, ordered by id.
type Neo4jSource struct {
	repo repo.Reader[Car, int]
}

func NewNeo4jSource(r repo.Reader[Car, int]) *Neo4jSource {
	return &Neo4jSource{repo: r}
}

func (s *Neo4jSource) Name() string { return "neo4j" }

func (s *Neo4jSource) Cars(ctx context.Context) ([]Car, error) {
	cars, err := s.repo.List(ctx, repo.ListOpts{OrderBy: string(FieldID)})
	if err != nil {
		return nil, fmt.Errorf("catalog: neo4j: %w", err)
	}
	return cars, nil
}

// Seed writes cars into the graph, one MERGE per record.
func Seed(ctx context.Context, w repo.Writer[Car], cars []Car) (int, error) {
	for i, c := range cars {
		if err := w.Upsert(ctx, c); err != nil {
			return i, fmt.Errorf("catalog: seed car %d: %w", c.ID, err)
		}
	}
	return len(cars), nil
}

func carToProps(c Car) map[string]any {
	return map[string]any{
		string(FieldID):           int64(c.ID),
		string(FieldName):         c.Name,
		string(FieldBrand):        c.Brand,
		string(FieldCategory):     c.Category,
		string(FieldYear):         int64(c.Year),
		string(FieldPrice):        c.Price,
		string(FieldHorsepower):   c.Horsepower,
		string(FieldAcceleration): c.Acceleration,
		string(FieldTopSpeed):     c.TopSpeed,
		string(FieldFuelType):     c.FuelType,
		string(FieldTransmission): c.Transmission,
		string(FieldImage):        c.Image,
	}
}

func carFromRecord(rec *neo4j.Record) (Car, error) {
	node, _, err := neo4j.GetRecordValue[dbtype.Node](rec, "n")
	if err != nil {
		return Car{}, err
	}
	p := node.Props
	return Car{
		ID:           int(numProp(p, FieldID)),
		Name:         strProp(p, FieldName),
		Brand:        strProp(p, FieldBrand),
		Category:     strProp(p, FieldCategory),
		Year:         int(numProp(p, FieldYear)),
		Price:        numProp(p, FieldPrice),
		Horsepower:   numProp(p, FieldHorsepower),
		Acceleration: numProp(p, FieldAcceleration),
		TopSpeed:     numProp(p, FieldTopSpeed),
		FuelType:     strProp(p, FieldFuelType),
		Transmission: strProp(p, FieldTransmission),
		Image:        strProp(p, FieldImage),
	}, nil
}

func strProp(props map[string]any, f Field) string {
	s, _ := props[string(f)].(string)
	return s
}

// numProp reads an integer or float property; Neo4j returns whole numbers
// written from Go ints as int64.
func numProp(props map[string]any, f Field) float64 {
	switch v := props[string(f)].(type) {
	case int64:
		return float64(v)
	case float64:
		return v
	}
	return 0
}
