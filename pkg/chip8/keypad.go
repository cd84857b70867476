package chip8

import "fmt"

const KeyCount = 16

// Key is a hexadecimal keypad code, 0x0-0xF.
type Key byte

func (k Key) String() string {
	return fmt.Sprintf("%X", byte(k)&0x0F)
}

// Layout is the physical arrangement of the COSMAC VIP keypad.
var Layout = [4][4]Key{
	{0x1, 0x2, 0x3, 0xC},
	{0x4, 0x5, 0x6, 0xD},
	{0x7, 0x8, 0x9, 0xE},
	{0xA, 0x0, 0xB, 0xF},
}

// KeyWait is the state of the blocking key read performed by Fx0A.
type KeyWait int

const (
	// KeyWaitIdle means no read is pending.
	KeyWaitIdle KeyWait = iota
	// KeyWaitLocked waits for a fresh key press.
	KeyWaitLocked
	// KeyWaitRelease saw a press and waits for that key to be released.
	KeyWaitRelease
	// KeyWaitUnlocked saw the release; the next Fx0A commits the key.
	KeyWaitUnlocked
)

func (s KeyWait) String() string {
	switch s {
	case KeyWaitIdle:
		return "idle"
	case KeyWaitLocked:
		return "locked"
	case KeyWaitRelease:
		return "wait-release"
	case KeyWaitUnlocked:
		return "unlocked"
	}
	return fmt.Sprintf("KeyWait(%d)", int(s))
}

// Keypad holds the 16 key states and the blocking read state machine.
type Keypad struct {
	keys    [KeyCount]bool
	wait    KeyWait
	lastKey Key
}

// Set records a key transition. A press while a read is locked advances the
// read to wait for the release of that key.
func (k *Keypad) Set(key Key, pressed bool) {
	key &= 0x0F
	k.keys[key] = pressed
	if !pressed {
		return
	}
	if k.wait == KeyWaitLocked {
		k.wait = KeyWaitRelease
	}
	k.lastKey = key
}

func (k *Keypad) Pressed(key Key) bool {
	return k.keys[key&0x0F]
}

// WaitState reports the blocking read state.
func (k *Keypad) WaitState() KeyWait {
	return k.wait
}

// LastKey is the most recently pressed key.
func (k *Keypad) LastKey() Key {
	return k.lastKey
}

// Reset releases every key and abandons a pending read.
func (k *Keypad) Reset() {
	k.keys = [KeyCount]bool{}
	k.wait = KeyWaitIdle
}

// await performs one step of the blocking read. It returns the key and true
// once a press and release have been observed; otherwise the caller has to
// re-execute the instruction on the next tick.
func (k *Keypad) await() (Key, bool) {
	switch k.wait {
	case KeyWaitIdle:
		k.wait = KeyWaitLocked
	case KeyWaitRelease:
		if !k.keys[k.lastKey] {
			k.wait = KeyWaitUnlocked
		}
	case KeyWaitUnlocked:
		k.wait = KeyWaitIdle
		return k.lastKey, true
	}
	return 0, false
}
