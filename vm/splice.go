package vm

import "bytes"

func opCat(e *Engine) error {
	b, err := e.pop()
	if err != nil {
		return err
	}
	a, err := e.pop()
	if err != nil {
		return err
	}
	cat := make([]byte, 0, len(a)+len(b))
	cat = append(append(cat, a...), b...)
	e.push(cat)
	return nil
}

func opSize(e *Engine) error {
	v, err := e.top()
	if err != nil {
		return err
	}
	e.pushInt64(int64(len(v)))
	return nil
}

func opEqual(e *Engine) error {
	b, err := e.pop()
	if err != nil {
		return err
	}
	a, err := e.pop()
	if err != nil {
		return err
	}
	e.pushBool(bytes.Equal(a, b))
	return nil
}

func opEqualVerify(e *Engine) error {
	b, err := e.pop()
	if err != nil {
		return err
	}
	a, err := e.pop()
	if err != nil {
		return err
	}
	if !bytes.Equal(a, b) {
		return ErrVerifyFailed
	}
	return nil
}
