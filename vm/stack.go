package vm

func (e *Engine) push(data []byte) {
	e.dataStack = append(e.dataStack, data)
}

func (e *Engine) pushBool(b bool) {
	e.push(BoolBytes(b))
}

func (e *Engine) pushInt64(n int64) {
	e.push(Int64Bytes(n))
}

func (e *Engine) pop() ([]byte, error) {
	if len(e.dataStack) == 0 {
		return nil, ErrDataStackUnderflow
	}
	res := e.dataStack[len(e.dataStack)-1]
	e.dataStack = e.dataStack[:len(e.dataStack)-1]
	return res, nil
}

func (e *Engine) popBool() (bool, error) {
	v, err := e.pop()
	if err != nil {
		return false, err
	}
	return AsBool(v), nil
}

func (e *Engine) popInt64() (int64, error) {
	v, err := e.pop()
	if err != nil {
		return 0, err
	}
	return AsInt64(v)
}

func (e *Engine) top() ([]byte, error) {
	if len(e.dataStack) == 0 {
		return nil, ErrDataStackUnderflow
	}
	return e.dataStack[len(e.dataStack)-1], nil
}

func opToAltStack(e *Engine) error {
	v, err := e.pop()
	if err != nil {
		return err
	}
	e.altStack = append(e.altStack, v)
	return nil
}

func opFromAltStack(e *Engine) error {
	if len(e.altStack) == 0 {
		return ErrAltStackUnderflow
	}
	v := e.altStack[len(e.altStack)-1]
	e.altStack = e.altStack[:len(e.altStack)-1]
	e.push(v)
	return nil
}

func op2Drop(e *Engine) error {
	for i := 0; i < 2; i++ {
		if _, err := e.pop(); err != nil {
			return err
		}
	}
	return nil
}

func op2Dup(e *Engine) error {
	if len(e.dataStack) < 2 {
		return ErrDataStackUnderflow
	}
	a := e.dataStack[len(e.dataStack)-2]
	b := e.dataStack[len(e.dataStack)-1]
	e.push(a)
	e.push(b)
	return nil
}

func opIfDup(e *Engine) error {
	v, err := e.top()
	if err != nil {
		return err
	}
	if AsBool(v) {
		e.push(v)
	}
	return nil
}

func opDepth(e *Engine) error {
	e.pushInt64(int64(len(e.dataStack)))
	return nil
}

func opDrop(e *Engine) error {
	_, err := e.pop()
	return err
}

func opDup(e *Engine) error {
	v, err := e.top()
	if err != nil {
		return err
	}
	e.push(v)
	return nil
}

func opNip(e *Engine) error {
	top, err := e.pop()
	if err != nil {
		return err
	}
	if _, err = e.pop(); err != nil {
		return err
	}
	e.push(top)
	return nil
}

func opOver(e *Engine) error {
	if len(e.dataStack) < 2 {
		return ErrDataStackUnderflow
	}
	e.push(e.dataStack[len(e.dataStack)-2])
	return nil
}

func opPick(e *Engine) error {
	n, err := e.popInt64()
	if err != nil {
		return err
	}
	if n < 0 || n >= int64(len(e.dataStack)) {
		return ErrDataStackUnderflow
	}
	e.push(e.dataStack[int64(len(e.dataStack))-1-n])
	return nil
}

func opRoll(e *Engine) error {
	n, err := e.popInt64()
	if err != nil {
		return err
	}
	if n < 0 || n >= int64(len(e.dataStack)) {
		return ErrDataStackUnderflow
	}
	idx := int64(len(e.dataStack)) - 1 - n
	v := e.dataStack[idx]
	e.dataStack = append(e.dataStack[:idx], e.dataStack[idx+1:]...)
	e.push(v)
	return nil
}

func opRot(e *Engine) error {
	if len(e.dataStack) < 3 {
		return ErrDataStackUnderflow
	}
	idx := len(e.dataStack) - 3
	v := e.dataStack[idx]
	e.dataStack = append(e.dataStack[:idx], e.dataStack[idx+1:]...)
	e.push(v)
	return nil
}

func opSwap(e *Engine) error {
	if len(e.dataStack) < 2 {
		return ErrDataStackUnderflow
	}
	l := len(e.dataStack)
	e.dataStack[l-2], e.dataStack[l-1] = e.dataStack[l-1], e.dataStack[l-2]
	return nil
}

func opTuck(e *Engine) error {
	if len(e.dataStack) < 2 {
		return ErrDataStackUnderflow
	}
	top := e.dataStack[len(e.dataStack)-1]
	second := e.dataStack[len(e.dataStack)-2]
	e.dataStack[len(e.dataStack)-2] = top
	e.dataStack[len(e.dataStack)-1] = second
	e.push(top)
	return nil
}
