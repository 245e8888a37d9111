package geom

import (
	"fmt"
	"strconv"
	"strings"
)

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WKT renders the polyline as a well-known-text LINESTRING.
func (l Polyline) WKT() string {
	var sb strings.Builder
	sb.WriteString("LINESTRING (")
	for i, p := range l {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(formatCoord(p.X))
		sb.WriteByte(' ')
		sb.WriteString(formatCoord(p.Y))
	}
	sb.WriteByte(')')
	return sb.String()
}

// MultiLineWKT renders multiple polyline parts as a MULTILINESTRING.
func MultiLineWKT(parts []Polyline) string {
	var sb strings.Builder
	sb.WriteString("MULTILINESTRING (")
	for i, part := range parts {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('(')
		for j, p := range part {
			if j > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(formatCoord(p.X))
			sb.WriteByte(' ')
			sb.WriteString(formatCoord(p.Y))
		}
		sb.WriteByte(')')
	}
	sb.WriteByte(')')
	return sb.String()
}

// ParsePointWKT parses a POINT well-known-text string.
func ParsePointWKT(s string) (Point, error) {
	body, err := wktBody(s, "POINT")
	if err != nil {
		return Point{}, err
	}
	p, err := parseCoordPair(body)
	if err != nil {
		return Point{}, fmt.Errorf("parse POINT: %w", err)
	}
	return p, nil
}

// ParseLineStringWKT parses a LINESTRING well-known-text string.
func ParseLineStringWKT(s string) (Polyline, error) {
	body, err := wktBody(s, "LINESTRING")
	if err != nil {
		return nil, err
	}
	pairs := strings.Split(body, ",")
	if len(pairs) < 2 {
		return nil, fmt.Errorf("parse LINESTRING: need at least 2 vertices, got %d", len(pairs))
	}
	line := make(Polyline, 0, len(pairs))
	for _, pair := range pairs {
		p, err := parseCoordPair(pair)
		if err != nil {
			return nil, fmt.Errorf("parse LINESTRING: %w", err)
		}
		line = append(line, p)
	}
	return line, nil
}

func wktBody(s, keyword string) (string, error) {
	s = strings.TrimSpace(s)
	upper := strings.ToUpper(s)
	if !strings.HasPrefix(upper, keyword) {
		return "", fmt.Errorf("expected %s geometry, got %q", keyword, s)
	}
	open := strings.IndexByte(s, '(')
	close := strings.LastIndexByte(s, ')')
	if open < 0 || close < open {
		return "", fmt.Errorf("malformed %s: %q", keyword, s)
	}
	return s[open+1 : close], nil
}

func parseCoordPair(s string) (Point, error) {
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) != 2 {
		return Point{}, fmt.Errorf("coordinate pair %q", s)
	}
	x, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return Point{}, fmt.Errorf("coordinate %q: %w", fields[0], err)
	}
	y, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return Point{}, fmt.Errorf("coordinate %q: %w", fields[1], err)
	}
	return Point{X: x, Y: y}, nil
}
