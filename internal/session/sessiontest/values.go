// Package sessiontest provides an in-memory session.Values for tests.
package sessiontest

type Values struct {
	M     map[interface{}]interface{}
	Saves int
	Err   error
}

func New() *Values {
	return &Values{M: map[interface{}]interface{}{}}
}

func (v *Values) Get(key interface{}) interface{}      { return v.M[key] }
func (v *Values) Set(key interface{}, val interface{}) { v.M[key] = val }
func (v *Values) Delete(key interface{})               { delete(v.M, key) }

func (v *Values) Save() error {
	v.Saves++
	return v.Err
}
