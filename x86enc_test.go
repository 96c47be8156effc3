package x86enc_test

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/tinyrange/x86enc"
)

func ExampleTable_Assemble() {
	tbl, err := x86enc.NewTable(32)
	if err != nil {
		panic(err)
	}
	eax, _ := x86enc.Register("eax")
	bufs, err := tbl.Assemble(x86enc.Inst("add", eax, x86enc.Imm(1)))
	if err != nil {
		panic(err)
	}
	for _, b := range bufs {
		fmt.Printf("% x\n", b.Bytes())
	}
	// Output:
	// 83 c0 01
	// 05 01 00 00 00
	// 81 c0 01 00 00 00
}

func ExampleListing() {
	text, err := x86enc.Listing([]byte{0x55, 0x89, 0xe5, 0xc3}, 32)
	if err != nil {
		panic(err)
	}
	fmt.Print(text)
	// Output:
	//    0:  55                       push ebp
	//    1:  89 e5                    mov ebp, esp
	//    3:  c3                       ret
}

func TestLabelsAcrossInstructions(t *testing.T) {
	tbl, err := x86enc.NewTable(64)
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	rax, _ := x86enc.Register("rax")
	rip, _ := x86enc.Register("rip")

	code := x86enc.NewBuffer()
	for _, inst := range []x86enc.Instruction{
		x86enc.Inst("lea", rax, x86enc.Mem(rip.(x86enc.Reg)).WithDisp(x86enc.Sym("value").Sub(x86enc.Sym("after_lea")))),
		x86enc.Inst("ret"),
	} {
		bufs, err := tbl.Assemble(inst)
		if err != nil {
			t.Fatalf("Assemble(%s): %v", inst, err)
		}
		code.AppendBuffer(bufs[len(bufs)-1])
		if inst.Mnemonic == "lea" {
			code.Export("after_lea", code.Len())
		}
	}
	code.Export("value", code.Len())
	code.Append(0x2A, 0, 0, 0)

	values := map[x86enc.Label]int64{}
	for l, off := range code.Exports() {
		values[l] = int64(off)
	}
	if _, err := code.Fixup(values); err != nil {
		t.Fatalf("Fixup: %v", err)
	}
	if n := len(code.Relocations()); n != 0 {
		t.Fatalf("%d relocations left", n)
	}
	text, err := x86enc.Listing(code.Bytes()[:8], 64)
	if err != nil {
		t.Fatalf("Listing: %v", err)
	}
	if !strings.Contains(text, "lea rax, ptr [rip+0x1]") {
		t.Fatalf("unexpected listing:\n%s", text)
	}
}

func TestErrorsAreExported(t *testing.T) {
	tbl, err := x86enc.NewTable(16)
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	ax, _ := x86enc.Register("ax")
	bx, _ := x86enc.Register("bx")
	bp, _ := x86enc.Register("bp")
	_, err = tbl.Assemble(x86enc.Inst("mov", ax, x86enc.MemIndex(bx.(x86enc.Reg), bp.(x86enc.Reg), 1)))
	if !errors.Is(err, x86enc.ErrAddressing) || !errors.Is(err, x86enc.ErrNoCandidate) {
		t.Fatalf("error=%v", err)
	}
	var ee *x86enc.EncodeError
	if !errors.As(err, &ee) || ee.Inst.Mnemonic != "mov" {
		t.Fatalf("error %T is not an EncodeError for mov", err)
	}
	if _, err := x86enc.NewTable(8); err == nil {
		t.Fatalf("NewTable accepted 8 bits")
	}
	if _, err := x86enc.NewTable(32, "sse9"); !errors.Is(err, x86enc.ErrUnknownFeature) {
		t.Fatalf("unknown feature error=%v", err)
	}
	if _, err := x86enc.Listing([]byte{0x90, 0xB8}, 32); !errors.Is(err, x86enc.ErrDecode) {
		t.Fatalf("truncated listing error=%v", err)
	}
}

// A table is shared read-only between goroutines.
func TestTableConcurrentUse(t *testing.T) {
	tbl, err := x86enc.NewTable(32, "sse2")
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	xmm0, _ := x86enc.Register("xmm0")
	xmm1, _ := x86enc.Register("xmm1")
	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bufs, err := tbl.Assemble(x86enc.Inst("addpd", xmm0, xmm1))
			if err != nil {
				errs <- err
				return
			}
			if got := fmt.Sprintf("% x", bufs[0].Bytes()); got != "66 0f 58 c1" {
				errs <- fmt.Errorf("addpd encoded as %s", got)
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
