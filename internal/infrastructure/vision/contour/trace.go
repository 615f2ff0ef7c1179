// Package contour восстанавливает упорядоченные границы 8-связных областей
// бинарной маски и их вложенность (алгоритм следования по границе Suzuki–Abe).
package contour

import (
	"sort"

	"grain-analyzer/internal/domain/entity"
	"grain-analyzer/internal/infrastructure/vision/raster"
)

// Направления вокруг пикселя по часовой стрелке на экране (ось Y вниз).
// Индекс 0 соответствует востоку.
var directions = [8]struct{ dy, dx int }{
	{0, 1},   // E
	{1, 1},   // SE
	{1, 0},   // S
	{1, -1},  // SW
	{0, -1},  // W
	{-1, -1}, // NW
	{-1, 0},  // N
	{-1, 1},  // NE
}

const (
	dirEast = 0
	dirWest = 4
)

// dirIndex[(dy+1)*3+(dx+1)] хранит номер направления для смещения к соседу.
var dirIndex = [9]int{5, 6, 7, 4, -1, 0, 3, 2, 1}

// frameBorder номер рамки изображения; она считается дырой верхнего уровня.
const frameBorder = 1

type tracer struct {
	w, h   int     // размер с рамкой в один пиксель
	labels []int32 // 0: фон, 1: непосещённый передний план, ±NBD: размеченная граница
	kinds  []entity.ContourKind
	parent []int32
	set    entity.ContourSet
}

// Trace находит все границы маски с иерархией вложенности.
// Контуры нумеруются в растровом порядке (сверху вниз, слева направо) их верхней
// левой точки; результат детерминирован для одной и той же маски.
func Trace(m *raster.Mask) (entity.ContourSet, error) {
	if m == nil || m.Width <= 0 || m.Height <= 0 {
		return entity.ContourSet{}, entity.NewInvalidInput("zero-sized mask")
	}
	if len(m.Pix) != m.Width*m.Height {
		return entity.ContourSet{}, entity.NewInvalidInput("mask buffer holds %d pixels, want %d", len(m.Pix), m.Width*m.Height)
	}

	t := &tracer{
		w:      m.Width + 2,
		h:      m.Height + 2,
		kinds:  []entity.ContourKind{0, entity.KindHole},
		parent: []int32{-1, -1},
	}
	t.labels = make([]int32, t.w*t.h)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if m.Pix[y*m.Width+x] {
				t.labels[(y+1)*t.w+x+1] = 1
			}
		}
	}
	t.set.Width, t.set.Height = m.Width, m.Height

	t.scan()
	t.order()
	t.link()
	return t.set, nil
}

func (t *tracer) scan() {
	nbd := int32(frameBorder)
	for i := 1; i < t.h-1; i++ {
		lnbd := int32(frameBorder)
		for j := 1; j < t.w-1; j++ {
			at := i*t.w + j
			v := t.labels[at]
			if v == 0 {
				continue
			}

			var (
				kind entity.ContourKind
				from int
			)
			switch {
			case v == 1 && t.labels[at-1] == 0:
				kind, from = entity.KindOuter, dirWest
			case v >= 1 && t.labels[at+1] == 0:
				kind, from = entity.KindHole, dirEast
				if v > 1 {
					lnbd = v
				}
			}

			if kind != 0 {
				nbd++
				t.kinds = append(t.kinds, kind)
				// тип новой границы и границы LNBD определяют родителя
				p := lnbd
				if t.kinds[lnbd] == kind {
					p = t.parent[lnbd]
				}
				t.parent = append(t.parent, p)
				t.set.Contours = append(t.set.Contours, entity.Contour{
					Kind:   kind,
					Points: t.follow(i, j, from, nbd),
				})
			}

			if w := t.labels[at]; w != 1 {
				if w < 0 {
					w = -w
				}
				lnbd = w
			}
		}
	}
}

// follow обходит границу от стартового пикселя (i, j) и размечает её номером nbd.
// from задаёт направление на известный фоновый сосед.
func (t *tracer) follow(i, j, from int, nbd int32) []entity.Point {
	start := i*t.w + j

	// поиск по часовой стрелке первого ненулевого соседа
	first := -1
	for k := 0; k < 8; k++ {
		d := (from + k) % 8
		if t.labels[t.step(start, d)] != 0 {
			first = t.step(start, d)
			break
		}
	}
	if first < 0 {
		t.labels[start] = -nbd
		return []entity.Point{t.point(start)}
	}

	var pts []entity.Point
	prev, cur := first, start
	for {
		// поиск против часовой стрелки, начиная со следующего за prev
		d0 := t.dir(cur, prev)
		eastZero := false
		next := -1
		for k := 1; k <= 8; k++ {
			d := (d0 - k + 16) % 8
			n := t.step(cur, d)
			if t.labels[n] != 0 {
				next = n
				break
			}
			if d == dirEast {
				eastZero = true
			}
		}

		if eastZero {
			t.labels[cur] = -nbd
		} else if t.labels[cur] == 1 {
			t.labels[cur] = nbd
		}
		pts = append(pts, t.point(cur))

		if next == start && cur == first {
			return pts
		}
		prev, cur = cur, next
	}
}

func (t *tracer) step(at, d int) int {
	return at + directions[d].dy*t.w + directions[d].dx
}

func (t *tracer) dir(from, to int) int {
	dy := to/t.w - from/t.w
	dx := to%t.w - from%t.w
	return dirIndex[(dy+1)*3+(dx+1)]
}

// point переводит индекс с рамкой в координаты исходной маски.
func (t *tracer) point(at int) entity.Point {
	return entity.Point{X: at%t.w - 1, Y: at/t.w - 1}
}

// order переставляет контуры по верхней левой точке. Обход находит дыру со
// строки ниже её верхней точки, поэтому порядок обнаружения бывает другим.
// При равных точках сохраняется порядок обнаружения.
func (t *tracer) order() {
	n := len(t.set.Contours)
	keys := make([]entity.Point, n)
	perm := make([]int, n)
	for i, c := range t.set.Contours {
		keys[i] = topLeft(c.Points)
		perm[i] = i
	}
	sort.SliceStable(perm, func(a, b int) bool {
		p, q := keys[perm[a]], keys[perm[b]]
		if p.Y != q.Y {
			return p.Y < q.Y
		}
		return p.X < q.X
	})

	rank := make([]int32, n)
	for i, old := range perm {
		rank[old] = int32(i)
	}
	contours := make([]entity.Contour, n)
	parent := make([]int32, n+2)
	copy(parent, t.parent[:2])
	for i, old := range perm {
		contours[i] = t.set.Contours[old]
		p := t.parent[old+2]
		if p > frameBorder {
			p = rank[p-2] + 2
		}
		parent[i+2] = p
	}
	t.set.Contours, t.parent = contours, parent
}

func topLeft(pts []entity.Point) entity.Point {
	best := pts[0]
	for _, p := range pts[1:] {
		if p.Y < best.Y || (p.Y == best.Y && p.X < best.X) {
			best = p
		}
	}
	return best
}

// link строит массив узлов иерархии; после order номер nbd соответствует контуру nbd-2.
func (t *tracer) link() {
	n := len(t.set.Contours)
	nodes := make([]entity.HierarchyNode, n)
	last := make([]int, n)
	for i := range nodes {
		nodes[i] = entity.HierarchyNode{Parent: entity.NoIndex, FirstChild: entity.NoIndex, NextSibling: entity.NoIndex}
		last[i] = entity.NoIndex
	}

	lastRoot := entity.NoIndex
	for i := 0; i < n; i++ {
		p := int(t.parent[i+2])
		if p <= frameBorder {
			if lastRoot != entity.NoIndex {
				nodes[lastRoot].NextSibling = i
			}
			lastRoot = i
			continue
		}
		pi := p - 2
		nodes[i].Parent = pi
		if last[pi] == entity.NoIndex {
			nodes[pi].FirstChild = i
		} else {
			nodes[last[pi]].NextSibling = i
		}
		last[pi] = i
	}
	t.set.Hierarchy = entity.Hierarchy{Nodes: nodes}
}
