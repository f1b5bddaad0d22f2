package codec

// sectionLayout describes the byte offsets (relative to the start of
// the mappable payload block, i.e. right after the meta+weightDim
// preamble) of every on-disk section, plus the total block size
// including Q/8-byte alignment padding before the int/ext link-count
// section, before the link-index section, and before the
// quantization-width weight/coefficient sections.
type sectionLayout struct {
	inputsMaxOff, inputsMaxLen   int
	inputsMinOff, inputsMinLen   int
	outputsMaxOff, outputsMaxLen int
	outputsMinOff, outputsMinLen int
	logOffOff, logOffLen         int // zero length when absent
	labelsOff, labelsLen         int
	intCountOff, intCountLen     int
	extCountOff, extCountLen     int
	linksOff, linksLen           int
	weightsOff, weightsLen       int
	coeffsOff, coeffsLen         int
	total                        int
}

func computeLayout(inputLimitsCount int, outputsDim, neuronsCount int, weightDim int, align, elemSize int, hasLogScale bool) sectionLayout {
	var l sectionLayout
	off := 0

	l.inputsMaxOff, l.inputsMaxLen = off, inputLimitsCount*4
	off += l.inputsMaxLen
	l.inputsMinOff, l.inputsMinLen = off, inputLimitsCount*4
	off += l.inputsMinLen
	l.outputsMaxOff, l.outputsMaxLen = off, outputsDim*4
	off += l.outputsMaxLen
	l.outputsMinOff, l.outputsMinLen = off, outputsDim*4
	off += l.outputsMinLen
	if hasLogScale {
		l.logOffOff, l.logOffLen = off, outputsDim*4
		off += l.logOffLen
	}
	l.labelsOff, l.labelsLen = off, outputsDim*2
	off += l.labelsLen

	off += int(alignBy(uint32(align), uint32(off)))
	l.intCountOff, l.intCountLen = off, neuronsCount*2
	off += l.intCountLen
	l.extCountOff, l.extCountLen = off, neuronsCount*2
	off += l.extCountLen

	off += int(alignBy(uint32(align), uint32(off)))
	l.linksOff, l.linksLen = off, weightDim*2
	off += l.linksLen

	off += int(alignBy(uint32(align), uint32(off)))
	l.weightsOff, l.weightsLen = off, weightDim*elemSize
	off += l.weightsLen

	l.coeffsOff, l.coeffsLen = off, neuronsCount*elemSize
	off += l.coeffsLen

	l.total = off
	return l
}
