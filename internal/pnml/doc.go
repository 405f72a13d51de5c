// Package pnml reads and writes Petri nets in the PNML place/transition
// format, including the finalmarkings extension used by process-mining
// tools to declare the accepting marking.
package pnml
