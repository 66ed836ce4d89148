package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/meadow/components"
	"github.com/pthm-cable/meadow/telemetry"
)

// InspectorData holds all the data needed to render the inspector panel.
type InspectorData struct {
	Cell          components.Cell
	Occupied      bool
	Kind          components.Kind
	Animal        components.Animal
	Lifetime      *telemetry.LifetimeStats // nil for plants and empty cells
	Tick          int32
	InitialEnergy float64
}

func (d *InspectorData) isAnimal() bool {
	return d.Occupied && d.Kind == components.KindAnimal
}

// Inspector renders the selected cell.
type Inspector struct {
	renderer *Renderer
	x, y     int32
	width    int32
	sections []SectionDescriptor
}

// NewInspector creates a new inspector panel.
func NewInspector(x, y, width int32) *Inspector {
	return &Inspector{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		sections: inspectorSections(),
	}
}

// SetPosition updates the inspector position.
func (ins *Inspector) SetPosition(x, y int32) {
	ins.x = x
	ins.y = y
}

// Draw renders the inspector panel and returns the bottom Y.
func (ins *Inspector) Draw(data InspectorData) int32 {
	r := ins.renderer
	padding := r.Theme.Padding
	contentWidth := ins.width - padding*2

	height := padding*2 + r.Theme.LineHeight + 6
	for _, sd := range ins.sections {
		height += r.SectionHeight(sd, &data)
	}
	r.DrawPanel(ins.x, ins.y, ins.width, height)

	y := ins.y + padding
	y = ins.drawHeader(ins.x+padding, y, data)
	y = r.DrawSpacer(y, 6)

	for _, sd := range ins.sections {
		y = r.DrawSection(ins.x+padding, y, sd, &data, contentWidth)
	}
	return y
}

func (ins *Inspector) drawHeader(x, y int32, data InspectorData) int32 {
	title := fmt.Sprintf("Cell (%d, %d): empty", data.Cell.X, data.Cell.Y)
	color := rl.LightGray
	if data.Occupied {
		title = fmt.Sprintf("Cell (%d, %d): %s", data.Cell.X, data.Cell.Y, data.Kind)
		color = rl.GetColor(0x6b8e23ff)
		if data.Kind == components.KindAnimal {
			color = rl.GetColor(0xd2b48cff)
		}
	}
	rl.DrawText(title, x, y, 16, color)
	return y + ins.renderer.Theme.LineHeight + 4
}

func inspectorData(v any) *InspectorData {
	return v.(*InspectorData)
}

func inspectorSections() []SectionDescriptor {
	animalOnly := func(v any) bool { return inspectorData(v).isAnimal() }
	hasLifetime := func(v any) bool {
		d := inspectorData(v)
		return d.isAnimal() && d.Lifetime != nil
	}

	return []SectionDescriptor{
		{
			ID:      "state",
			Title:   "State",
			Visible: animalOnly,
			Fields: []FieldDescriptor{
				{ID: "id", Label: "ID", Widget: WidgetText, Format: "%.0f",
					Getter: func(v any) float32 { return float32(inspectorData(v).Animal.ID) }},
				{ID: "energy", Label: "Energy", Widget: WidgetEnergyBar,
					Getter: func(v any) float32 { return float32(inspectorData(v).Animal.Energy) },
					MaxGetter: func(v any) float32 { return float32(inspectorData(v).InitialEnergy) }},
				{ID: "hunger", Label: "Hunger", Widget: WidgetText, Format: "%.0f ticks",
					Getter: func(v any) float32 { return float32(inspectorData(v).Animal.CyclesSinceLastEat) }},
				{ID: "last_move", Label: "Last move", Widget: WidgetText,
					TextGetter: func(v any) string {
						a := inspectorData(v).Animal
						if !a.HasLastMove {
							return "none"
						}
						return fmt.Sprintf("(%+d, %+d)", a.LastMoveDir.X, a.LastMoveDir.Y)
					}},
			},
		},
		{
			ID:      "traits",
			Title:   "Traits",
			Visible: animalOnly,
			Fields: []FieldDescriptor{
				{ID: "laziness", Label: "Laziness", Widget: WidgetBar, Range: DefaultRange(),
					Getter: func(v any) float32 { return float32(inspectorData(v).Animal.Laziness) }},
				{ID: "wander_lust", Label: "Wander lust", Widget: WidgetBar, Range: DefaultRange(),
					Getter: func(v any) float32 { return float32(inspectorData(v).Animal.WanderLust) }},
			},
		},
		{
			ID:      "lifetime",
			Title:   "Lifetime",
			Visible: hasLifetime,
			Fields: []FieldDescriptor{
				{ID: "age", Label: "Age", Widget: WidgetText, Format: "%.0f ticks",
					Getter: func(v any) float32 {
						d := inspectorData(v)
						return float32(d.Tick - d.Lifetime.BirthTick)
					}},
				{ID: "meals", Label: "Meals", Widget: WidgetText, Format: "%.0f",
					Getter: func(v any) float32 { return float32(inspectorData(v).Lifetime.Meals) }},
				{ID: "moves", Label: "Moves", Widget: WidgetText, Format: "%.0f",
					Getter: func(v any) float32 { return float32(inspectorData(v).Lifetime.Moves) }},
				{ID: "peak_energy", Label: "Peak energy", Widget: WidgetText, Format: "%.1f",
					Getter: func(v any) float32 { return float32(inspectorData(v).Lifetime.PeakEnergy) }},
				{ID: "longest_fast", Label: "Longest fast", Widget: WidgetText, Format: "%.0f ticks",
					Getter: func(v any) float32 { return float32(inspectorData(v).Lifetime.LongestFast) }},
			},
		},
	}
}
