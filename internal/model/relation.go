package model

// RelationStrength tells whether referencing features are owned by the
// referenced feature.
type RelationStrength string

// Relation strengths.
const (
	RelationAssociation RelationStrength = "Association"
	RelationComposition RelationStrength = "Composition"
)

// FieldPair links a referencing field to the referenced field it points at.
type FieldPair struct {
	Referencing string
	Referenced  string
}

// Relation is a one-to-many relation between two layers of a project.
type Relation struct {
	ID string

	Name string

	// ReferencingLayerID is the child layer holding the foreign key.
	ReferencingLayerID string

	// ReferencedLayerID is the parent layer.
	ReferencedLayerID string

	Fields []FieldPair

	Strength RelationStrength
}

// Join is a table join configured on a vector layer: attributes of the join
// layer are appended to the target layer where JoinField equals TargetField.
type Join struct {
	JoinLayerID string
	TargetField string
	JoinField   string
	Prefix      string

	MemoryCache    bool
	Editable       bool
	UpsertOnEdit   bool
	CascadedDelete bool

	// JoinedFields restricts the joined attributes. Empty means all fields.
	JoinedFields []string
}
