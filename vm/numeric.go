package vm

import (
	"github.com/Manyfestation/silverscript/math/checked"
)

func op1Add(e *Engine) error {
	n, err := e.popInt64()
	if err != nil {
		return err
	}
	res, ok := checked.AddInt64(n, 1)
	if !ok {
		return ErrRange
	}
	e.pushInt64(res)
	return nil
}

func op1Sub(e *Engine) error {
	n, err := e.popInt64()
	if err != nil {
		return err
	}
	res, ok := checked.SubInt64(n, 1)
	if !ok {
		return ErrRange
	}
	e.pushInt64(res)
	return nil
}

func opNegate(e *Engine) error {
	n, err := e.popInt64()
	if err != nil {
		return err
	}
	res, ok := checked.NegateInt64(n)
	if !ok {
		return ErrRange
	}
	e.pushInt64(res)
	return nil
}

func opAbs(e *Engine) error {
	n, err := e.popInt64()
	if err != nil {
		return err
	}
	if n < 0 {
		res, ok := checked.NegateInt64(n)
		if !ok {
			return ErrRange
		}
		n = res
	}
	e.pushInt64(n)
	return nil
}

func opNot(e *Engine) error {
	v, err := e.pop()
	if err != nil {
		return err
	}
	e.pushBool(!AsBool(v))
	return nil
}

func op0NotEqual(e *Engine) error {
	n, err := e.popInt64()
	if err != nil {
		return err
	}
	e.pushBool(n != 0)
	return nil
}

func popTwoInt64(e *Engine) (x, y int64, err error) {
	y, err = e.popInt64()
	if err != nil {
		return 0, 0, err
	}
	x, err = e.popInt64()
	return x, y, err
}

func opAdd(e *Engine) error {
	x, y, err := popTwoInt64(e)
	if err != nil {
		return err
	}
	res, ok := checked.AddInt64(x, y)
	if !ok {
		return ErrRange
	}
	e.pushInt64(res)
	return nil
}

func opSub(e *Engine) error {
	x, y, err := popTwoInt64(e)
	if err != nil {
		return err
	}
	res, ok := checked.SubInt64(x, y)
	if !ok {
		return ErrRange
	}
	e.pushInt64(res)
	return nil
}

func opMul(e *Engine) error {
	x, y, err := popTwoInt64(e)
	if err != nil {
		return err
	}
	res, ok := checked.MulInt64(x, y)
	if !ok {
		return ErrRange
	}
	e.pushInt64(res)
	return nil
}

func opDiv(e *Engine) error {
	x, y, err := popTwoInt64(e)
	if err != nil {
		return err
	}
	if y == 0 {
		return ErrDivZero
	}
	res, ok := checked.DivInt64(x, y)
	if !ok {
		return ErrRange
	}
	e.pushInt64(res)
	return nil
}

func opMod(e *Engine) error {
	x, y, err := popTwoInt64(e)
	if err != nil {
		return err
	}
	if y == 0 {
		return ErrDivZero
	}
	res, ok := checked.ModInt64(x, y)
	if !ok {
		return ErrRange
	}
	// mod takes the sign of the divisor
	if res != 0 && (res < 0) != (y < 0) {
		res += y
	}
	e.pushInt64(res)
	return nil
}

func opBoolAnd(e *Engine) error {
	y, err := e.pop()
	if err != nil {
		return err
	}
	x, err := e.pop()
	if err != nil {
		return err
	}
	e.pushBool(AsBool(x) && AsBool(y))
	return nil
}

func opBoolOr(e *Engine) error {
	y, err := e.pop()
	if err != nil {
		return err
	}
	x, err := e.pop()
	if err != nil {
		return err
	}
	e.pushBool(AsBool(x) || AsBool(y))
	return nil
}

func opNumEqual(e *Engine) error {
	x, y, err := popTwoInt64(e)
	if err != nil {
		return err
	}
	e.pushBool(x == y)
	return nil
}

func opNumEqualVerify(e *Engine) error {
	x, y, err := popTwoInt64(e)
	if err != nil {
		return err
	}
	if x != y {
		return ErrVerifyFailed
	}
	return nil
}

func opNumNotEqual(e *Engine) error {
	x, y, err := popTwoInt64(e)
	if err != nil {
		return err
	}
	e.pushBool(x != y)
	return nil
}

func opLessThan(e *Engine) error {
	x, y, err := popTwoInt64(e)
	if err != nil {
		return err
	}
	e.pushBool(x < y)
	return nil
}

func opGreaterThan(e *Engine) error {
	x, y, err := popTwoInt64(e)
	if err != nil {
		return err
	}
	e.pushBool(x > y)
	return nil
}

func opLessThanOrEqual(e *Engine) error {
	x, y, err := popTwoInt64(e)
	if err != nil {
		return err
	}
	e.pushBool(x <= y)
	return nil
}

func opGreaterThanOrEqual(e *Engine) error {
	x, y, err := popTwoInt64(e)
	if err != nil {
		return err
	}
	e.pushBool(x >= y)
	return nil
}

func opMin(e *Engine) error {
	x, y, err := popTwoInt64(e)
	if err != nil {
		return err
	}
	if x > y {
		x = y
	}
	e.pushInt64(x)
	return nil
}

func opMax(e *Engine) error {
	x, y, err := popTwoInt64(e)
	if err != nil {
		return err
	}
	if x < y {
		x = y
	}
	e.pushInt64(x)
	return nil
}

func opWithin(e *Engine) error {
	max, err := e.popInt64()
	if err != nil {
		return err
	}
	min, err := e.popInt64()
	if err != nil {
		return err
	}
	x, err := e.popInt64()
	if err != nil {
		return err
	}
	e.pushBool(x >= min && x < max)
	return nil
}
