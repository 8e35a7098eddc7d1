package port

import "fmt"

// MaxSlots bounds the slot index range to [0, MaxSlots).
const MaxSlots = 100

// Port bases and strides.
const (
	postgresBase  = 5433
	redisBase     = 6380
	s3Base        = 9010
	s3ConsoleBase = 9011
	frontendBase  = 4000
	backendBase   = 4001

	blockStride = 10
)

// Map holds the host ports assigned to one project.
// JSON names are part of the on-disk registry format.
type Map struct {
	Postgres  int `json:"postgres"`
	Redis     int `json:"redis"`
	S3        int `json:"s3"`
	S3Console int `json:"s3Console"`
	Frontend  int `json:"frontend"`
	Backend   int `json:"backend"`
}

// NamedPort is a single entry of a Map.
type NamedPort struct {
	Name string
	Port int
}

// Compute returns the port map for a slot index.
func Compute(index int) Map {
	return Map{
		Postgres:  postgresBase + index,
		Redis:     redisBase + index,
		S3:        s3Base + index*blockStride,
		S3Console: s3ConsoleBase + index*blockStride,
		Frontend:  frontendBase + index*blockStride,
		Backend:   backendBase + index*blockStride,
	}
}

// ValidIndex reports whether index lies in [0, MaxSlots).
func ValidIndex(index int) bool {
	return index >= 0 && index < MaxSlots
}

// Named returns the ports in a stable order.
func (m Map) Named() []NamedPort {
	return []NamedPort{
		{"postgres", m.Postgres},
		{"redis", m.Redis},
		{"s3", m.S3},
		{"s3Console", m.S3Console},
		{"frontend", m.Frontend},
		{"backend", m.Backend},
	}
}

// Values returns the port numbers in the same order as Named.
func (m Map) Values() []int {
	named := m.Named()
	values := make([]int, len(named))
	for i, np := range named {
		values[i] = np.Port
	}
	return values
}

// Overlaps reports whether any port in m also appears in other.
func (m Map) Overlaps(other Map) bool {
	set := make(map[int]struct{}, 6)
	for _, p := range other.Values() {
		set[p] = struct{}{}
	}
	for _, p := range m.Values() {
		if _, ok := set[p]; ok {
			return true
		}
	}
	return false
}

func (m Map) String() string {
	return fmt.Sprintf("postgres=%d redis=%d s3=%d s3Console=%d frontend=%d backend=%d",
		m.Postgres, m.Redis, m.S3, m.S3Console, m.Frontend, m.Backend)
}
