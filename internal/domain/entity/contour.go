package entity

import "image"

// Point координата пикселя (X столбец, Y строка)
type Point struct {
	X int
	Y int
}

// ImagePoint переводит точку в image.Point.
func (p Point) ImagePoint() image.Point {
	return image.Pt(p.X, p.Y)
}

// ContourKind тип границы
type ContourKind int

const (
	KindOuter ContourKind = iota + 1 // Внешняя граница области
	KindHole                         // Граница дыры внутри области
)

func (k ContourKind) String() string {
	switch k {
	case KindOuter:
		return "outer"
	case KindHole:
		return "hole"
	default:
		return "unknown"
	}
}

// Contour замкнутая последовательность граничных пикселей.
// Внешние границы обходятся против часовой стрелки на экране, дыры по часовой.
// Соседние точки и пара (последняя, первая) 8-связны.
type Contour struct {
	Points []Point
	Kind   ContourKind
}

// Len возвращает число точек контура.
func (c Contour) Len() int {
	return len(c.Points)
}

// Bounds возвращает ограничивающий прямоугольник контура (Max не включительно).
func (c Contour) Bounds() image.Rectangle {
	if len(c.Points) == 0 {
		return image.Rectangle{}
	}
	r := image.Rect(c.Points[0].X, c.Points[0].Y, c.Points[0].X+1, c.Points[0].Y+1)
	for _, p := range c.Points[1:] {
		r = r.Union(image.Rect(p.X, p.Y, p.X+1, p.Y+1))
	}
	return r
}

// NoIndex отсутствие связи в иерархии
const NoIndex = -1

// HierarchyNode связи одного контура в лесу. Индексы указывают в ContourSet.Contours.
type HierarchyNode struct {
	Parent      int
	FirstChild  int
	NextSibling int
}

// Hierarchy лес контуров в виде массива узлов, параллельного ContourSet.Contours.
type Hierarchy struct {
	Nodes []HierarchyNode
}

// Children возвращает прямых потомков контура в порядке обнаружения.
func (h Hierarchy) Children(i int) []int {
	var out []int
	for c := h.Nodes[i].FirstChild; c != NoIndex; c = h.Nodes[c].NextSibling {
		out = append(out, c)
	}
	return out
}

// Roots возвращает контуры верхнего уровня в порядке обнаружения.
func (h Hierarchy) Roots() []int {
	var out []int
	for i, n := range h.Nodes {
		if n.Parent == NoIndex {
			out = append(out, i)
		}
	}
	return out
}

// ContourSet результат трассировки: контуры в порядке обнаружения и их иерархия.
type ContourSet struct {
	Width     int
	Height    int
	Contours  []Contour
	Hierarchy Hierarchy
}

// External возвращает индексы внешних контуров верхнего уровня.
func (s ContourSet) External() []int {
	out := make([]int, 0, len(s.Contours))
	for _, i := range s.Hierarchy.Roots() {
		if s.Contours[i].Kind == KindOuter {
			out = append(out, i)
		}
	}
	return out
}

// All возвращает индексы всех контуров.
func (s ContourSet) All() []int {
	out := make([]int, len(s.Contours))
	for i := range out {
		out[i] = i
	}
	return out
}

// View возвращает индексы контуров для режима выборки.
func (s ContourSet) View(mode TraceMode) []int {
	if mode == TraceTree {
		return s.All()
	}
	return s.External()
}

// Frame ищет корневой внешний контур, идущий по краю кадра.
func (s ContourSet) Frame() (int, bool) {
	full := image.Rect(0, 0, s.Width, s.Height)
	for _, i := range s.Hierarchy.Roots() {
		if c := s.Contours[i]; c.Kind == KindOuter && c.Bounds() == full {
			return i, true
		}
	}
	return NoIndex, false
}

// FramedView выборка для маски с залитым краем кадра. Рамка и её дыры в выборку
// не входят; внешними считаются контуры, лежащие прямо в дырах рамки.
// Без рамки результат совпадает с View.
func (s ContourSet) FramedView(mode TraceMode) []int {
	frame, ok := s.Frame()
	if !ok {
		return s.View(mode)
	}
	out := make([]int, 0, len(s.Contours))
	for i := range s.Contours {
		// подъём до дыры рамки; depth расстояние от неё
		at, depth := i, 0
		for at != NoIndex && s.Hierarchy.Nodes[at].Parent != frame {
			at = s.Hierarchy.Nodes[at].Parent
			depth++
		}
		if at == NoIndex || depth == 0 {
			continue
		}
		if mode == TraceTree || depth == 1 {
			out = append(out, i)
		}
	}
	return out
}

// HoleCount число дыр, непосредственно вложенных в контур.
func (s ContourSet) HoleCount(i int) int {
	n := 0
	for _, c := range s.Hierarchy.Children(i) {
		if s.Contours[c].Kind == KindHole {
			n++
		}
	}
	return n
}
