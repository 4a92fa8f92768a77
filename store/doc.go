// Package store keeps the streets and traffic lights a user has defined.
//
// Records live in memory and are written to a single gob file on Save. The
// file is replaced atomically, so a crash during Save leaves the previous
// contents intact.
//
// Example:
//
//	st, err := store.Open("/var/lib/streetflow/streetflow.gob")
//	if err != nil {
//	    // handle error
//	}
//	rec, _ := st.PutStreet(street)
//	_ = st.Save()
package store
