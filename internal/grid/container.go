package grid

import "fmt"

// Agent is an opaque occupant reference. The container only needs a
// stable identity; agent behavior and lifetime live elsewhere.
type Agent interface {
	AgentID() string
}

// AgentContainer tracks which agents are located on one cell. It does
// not own the agents: removing a cell detaches its agents, never
// destroys them. Iteration order is insertion order so runs replay
// deterministically. Not safe for concurrent mutation; simulation
// steps are single-threaded by contract.
type AgentContainer struct {
	owner  *Cell
	maxLen int // <= 0 means unbounded

	agents []Agent        // insertion order
	index  map[string]int // AgentID -> position in agents
}

// newAgentContainer binds a container to its owning cell. Containers
// are created with their cell and are never re-bound to another one.
func newAgentContainer(owner *Cell, maxLen int) *AgentContainer {
	return &AgentContainer{
		owner:  owner,
		maxLen: maxLen,
		index:  make(map[string]int),
	}
}

// Cell returns the owning cell.
func (ac *AgentContainer) Cell() *Cell { return ac.owner }

// MaxLen returns the capacity ceiling, or 0 when unbounded.
func (ac *AgentContainer) MaxLen() int {
	if ac.maxLen <= 0 {
		return 0
	}
	return ac.maxLen
}

// Len returns the number of agents currently tracked.
func (ac *AgentContainer) Len() int { return len(ac.agents) }

// Contains reports whether the agent is tracked here.
func (ac *AgentContainer) Contains(a Agent) bool {
	_, ok := ac.index[a.AgentID()]
	return ok
}

// Add records the agent's presence on the owning cell. Adding an agent
// that is already present is a no-op. Adding beyond the capacity
// ceiling fails with ErrCapacityExceeded and leaves the container
// unchanged.
func (ac *AgentContainer) Add(a Agent) error {
	if _, ok := ac.index[a.AgentID()]; ok {
		return nil
	}
	if ac.maxLen > 0 && len(ac.agents) >= ac.maxLen {
		return fmt.Errorf("add agent %s: %w (max %d)", a.AgentID(), ErrCapacityExceeded, ac.maxLen)
	}
	ac.index[a.AgentID()] = len(ac.agents)
	ac.agents = append(ac.agents, a)
	return nil
}

// Remove detaches the agent from the owning cell. Removing an agent
// that is not tracked fails with ErrNotPresent and mutates nothing.
func (ac *AgentContainer) Remove(a Agent) error {
	pos, ok := ac.index[a.AgentID()]
	if !ok {
		return fmt.Errorf("remove agent %s: %w", a.AgentID(), ErrNotPresent)
	}
	copy(ac.agents[pos:], ac.agents[pos+1:])
	ac.agents[len(ac.agents)-1] = nil
	ac.agents = ac.agents[:len(ac.agents)-1]
	delete(ac.index, a.AgentID())
	for i := pos; i < len(ac.agents); i++ {
		ac.index[ac.agents[i].AgentID()] = i
	}
	return nil
}

// Agents returns a snapshot of the tracked agents in insertion order.
func (ac *AgentContainer) Agents() []Agent {
	out := make([]Agent, len(ac.agents))
	copy(out, ac.agents)
	return out
}
