package protocol

import (
	"strconv"

	"stablemesh/crypto"
)

// ToggleActive flips the global pause flag and returns the new value. The
// flag gates every non-admin mutation; admin operations and reads stay
// available while the protocol is paused.
func (e *Engine) ToggleActive(caller crypto.Address) (bool, error) {
	if e == nil || e.state == nil {
		return false, errNilState
	}
	if err := e.requireOwner(caller); err != nil {
		return false, err
	}

	st, err := e.ensureProtocolState()
	if err != nil {
		return false, err
	}
	st.Active = !st.Active

	if err := e.state.PutProtocolState(st); err != nil {
		return false, err
	}
	e.emit(eventProtocolToggled, caller, "", nil, map[string]string{
		"active": strconv.FormatBool(st.Active),
	})
	return st.Active, nil
}

// SetOracleOperator overwrites the operator's authorization flag. Removal
// flips the flag to false rather than deleting the record.
func (e *Engine) SetOracleOperator(caller, operator crypto.Address, authorized bool) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if err := e.requireOwner(caller); err != nil {
		return err
	}

	if err := e.state.PutOracleOperator(operator, authorized); err != nil {
		return err
	}
	e.emit(eventOperatorUpdated, operator, "", nil, map[string]string{
		"authorized": strconv.FormatBool(authorized),
	})
	return nil
}
