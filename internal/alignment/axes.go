package alignment

import "fmt"

// AxisID names an ethic axis.
type AxisID uint8

const (
	AxisWar AxisID = iota
	AxisMaterialist
	AxisAuthoritarian
	AxisXenophobia
	AxisExpansionist
)

var axisNames = [...]string{"war", "materialist", "authoritarian", "xenophobia", "expansionist"}

func (a AxisID) String() string {
	if int(a) < len(axisNames) {
		return axisNames[a]
	}
	return fmt.Sprintf("axis(%d)", a)
}

// ParseAxis resolves an axis name.
func ParseAxis(s string) (AxisID, error) {
	for i, n := range axisNames {
		if n == s {
			return AxisID(i), nil
		}
	}
	return 0, fmt.Errorf("unknown ethic axis %q", s)
}

// AxisValue is one conviction on one axis.
type AxisValue struct {
	Axis  AxisID  `json:"axis"`
	Value float32 `json:"value"`
}

// Axes is a sparse list of axis convictions. Missing axes read as 0.
type Axes []AxisValue

// Get returns the value on axis, or 0 if absent.
func (a Axes) Get(axis AxisID) float32 {
	for _, v := range a {
		if v.Axis == axis {
			return v.Value
		}
	}
	return 0
}

// OutlookID names an outlook.
type OutlookID uint16

const (
	OutlookNeutral OutlookID = iota
	OutlookLoyalist
	OutlookOpportunist
	OutlookFanatic
	OutlookMutinous
)

var outlookNames = [...]string{"neutral", "loyalist", "opportunist", "fanatic", "mutinous"}

func (o OutlookID) String() string {
	if int(o) < len(outlookNames) {
		return outlookNames[o]
	}
	return fmt.Sprintf("outlook(%d)", o)
}

// ParseOutlook resolves an outlook name.
func ParseOutlook(s string) (OutlookID, error) {
	for i, n := range outlookNames {
		if n == s {
			return OutlookID(i), nil
		}
	}
	return 0, fmt.Errorf("unknown outlook %q", s)
}

// Outlook is one weighted outlook held by an individual. Weights may be negative.
type Outlook struct {
	ID     OutlookID `json:"id"`
	Weight float32   `json:"weight"`
}
