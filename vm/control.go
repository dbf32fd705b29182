package vm

func opNop(e *Engine) error {
	return nil
}

func opIf(e *Engine) error {
	cond, err := e.popBool()
	if err != nil {
		return err
	}
	e.condStack = append(e.condStack, cond)
	return nil
}

func opNotIf(e *Engine) error {
	cond, err := e.popBool()
	if err != nil {
		return err
	}
	e.condStack = append(e.condStack, !cond)
	return nil
}

func opElse(e *Engine) error {
	if len(e.condStack) == 0 {
		return ErrCondStack
	}
	e.condStack[len(e.condStack)-1] = !e.condStack[len(e.condStack)-1]
	return nil
}

func opEndif(e *Engine) error {
	if len(e.condStack) == 0 {
		return ErrCondStack
	}
	e.condStack = e.condStack[:len(e.condStack)-1]
	return nil
}

func opVerify(e *Engine) error {
	ok, err := e.popBool()
	if err != nil {
		return err
	}
	if !ok {
		return ErrVerifyFailed
	}
	return nil
}

func opFail(e *Engine) error {
	return ErrReturn
}
