package volume

// Visitor branches on the concrete type of a volume without type assertions
type Visitor interface {
	VisitSphere(s *Sphere)
	VisitBox(b *Box)
	VisitCapsule(c *Capsule)
	VisitCylinder(c *Cylinder)
	VisitTriangle(t *Triangle)
	VisitFrustum(f *Frustum)
}

// BaseVisitor ignores every shape. Embed it and override only the shapes of interest.
type BaseVisitor struct{}

// Visit methods of BaseVisitor do nothing
func (BaseVisitor) VisitSphere(*Sphere)     {}
func (BaseVisitor) VisitBox(*Box)           {}
func (BaseVisitor) VisitCapsule(*Capsule)   {}
func (BaseVisitor) VisitCylinder(*Cylinder) {}
func (BaseVisitor) VisitTriangle(*Triangle) {}
func (BaseVisitor) VisitFrustum(*Frustum)   {}
